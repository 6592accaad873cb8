// server/internal/api/handlers/admin_handler.go
package handlers

import (
	"net/http"

	"aayur-gram-api-server/internal/database"
	"aayur-gram-api-server/internal/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	Users UserStore
	Log   *zap.Logger
}

// ListUsers searches accounts by id, short code, email or name.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := search.Build(c.Query("q"), database.UserSearchFields...)

	users, err := h.Users.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.Log, "listUsers", err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}
