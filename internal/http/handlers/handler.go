package handlers

import (
	"errors"
	"net/http"

	"taskhub/internal/repository"
	"taskhub/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler bundles the services the HTTP surface dispatches into.
type Handler struct {
	Auth  *service.AuthService
	Tasks *service.TaskService
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService) *Handler {
	return &Handler{Auth: auth, Tasks: tasks}
}

// writeError maps service error kinds onto HTTP statuses. Anything
// unrecognized is a store-layer failure and stays opaque to the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, repository.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
