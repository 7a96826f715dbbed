package main

import (
	"context"
	"log"
	"os"
	"time"

	"taskhub/internal/db"
	"taskhub/internal/repository"
	"taskhub/internal/service"
)

// Creates a user (or reuses an existing one) and prints a bearer token
// for manual testing. Expects DATABASE_URL and JWT_SECRET env vars.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	email := os.Getenv("USER_EMAIL")
	if email == "" {
		email = "dev@example.com"
	}
	password := os.Getenv("USER_PASSWORD")
	if password == "" {
		password = "devpassword"
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	tokens := service.NewTokenManager(secret, 24*time.Hour)
	auth := service.NewAuthService(repo, tokens)
	ctx := context.Background()

	user, err := repo.GetByEmail(ctx, email)
	if err == nil {
		log.Printf("user already exists id=%s\n", user.ID)
	} else {
		user, err = auth.Register(ctx, email, password)
		if err != nil {
			log.Fatalf("register failed: %v", err)
		}
		log.Printf("user created id=%s\n", user.ID)
	}

	token, err := tokens.Generate(user.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
