package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// End-to-end smoke check against a running server: registers (or logs
// in) a user over HTTP, subscribes on /ws, creates a task and waits
// for the task_created event to arrive on the socket.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://127.0.0.1:%s", port)

	email := "smoke@example.com"
	password := "smokepassword"

	// register is allowed to fail with 409 on reruns
	post(base+"/api/v1/auth/register", "", map[string]string{"email": email, "password": password})

	body := post(base+"/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil || login.Token == "" {
		log.Fatalf("login failed: %s", body)
	}

	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, login.Token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	post(base+"/api/v1/tasks", login.Token, map[string]string{"title": "smoke task"})

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		log.Fatalf("no event received: %v", err)
	}
	log.Printf("got event: %s", string(msg))

	log.Println("smoke test finished")
}

func post(url, token string, payload any) []byte {
	data, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	log.Printf("POST %s -> %d", url, resp.StatusCode)
	return buf.Bytes()
}
