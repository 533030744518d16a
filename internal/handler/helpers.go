package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskcompass/internal/middleware"
	"taskcompass/internal/model"
	"taskcompass/internal/tasks"
	"taskcompass/internal/users"
)

// Accounts is the slice of the user service the handlers need to resolve the
// authenticated identity.
type Accounts interface {
	Lookup(uid string) (*model.UserAccount, bool)
}

// currentUser resolves the authenticated account from the request context.
// Writes the error response itself when resolution fails.
func currentUser(c *gin.Context, accounts Accounts) (*model.UserAccount, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	uid, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return nil, false
	}
	account, ok := accounts.Lookup(uid)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown account"})
		return nil, false
	}
	return account, true
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tasks.ErrTaskNotFound), errors.Is(err, users.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, tasks.ErrPermissionDenied), errors.Is(err, users.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, tasks.ErrInvalidTask):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, users.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, users.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
