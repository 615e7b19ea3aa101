package handlers

import (
	"net/http"

	"todo-api/internal/middleware"
	"todo-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	users *services.UserService
	log   *logrus.Logger
}

func NewAdminHandler(users *services.UserService, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{users: users, log: log}
}

// GetAllUsers handles GET /admin/users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, h.log, "handlers.GetAllUsers", err)
		return
	}

	// Map to safe response payload
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}

// DeleteUser handles DELETE /admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	const op = "handlers.DeleteUser"

	id, err := parseID(c)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	if err := h.users.Delete(c.Request.Context(), middleware.Identity(c), id); err != nil {
		respondError(c, h.log, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}
