package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskcompass/internal/auth"
	"taskcompass/internal/model"
	"taskcompass/internal/users"
)

type UserHandler struct {
	users     *users.Service
	jwtSecret string
}

func NewUserHandler(svc *users.Service, jwtSecret string) *UserHandler {
	return &UserHandler{users: svc, jwtSecret: jwtSecret}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=2"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email" binding:"omitempty,email"`
	Password    string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string            `json:"token"`
	User  model.UserAccount `json:"user"`
}

// Register godoc
// @Summary Create an account and sign in
// @Tags Users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} AuthResponse
// @Router /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	account, err := h.users.Register(c.Request.Context(), users.Input{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(account.UID, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: account})
}

// Login godoc
// @Summary Sign in with username and password
// @Tags Users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Router /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	account, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := auth.GenerateToken(account.UID, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: *account})
}

// List godoc
// @Summary List all accounts (admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.UserAccount
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
		return
	}
	c.JSON(http.StatusOK, h.users.Snapshot())
}

type CreateUserRequest struct {
	Username    string     `json:"username" binding:"required,min=2"`
	DisplayName string     `json:"displayName"`
	Email       string     `json:"email" binding:"omitempty,email"`
	Password    string     `json:"password" binding:"required,min=6"`
	Role        model.Role `json:"role" binding:"omitempty,oneof=admin user"`
	PhotoURL    string     `json:"photoURL"`
}

// Create godoc
// @Summary Add a managed account (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "Account details"
// @Success 201 {object} model.UserAccount
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	account, err := h.users.Create(c.Request.Context(), actor, users.Input{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// Delete godoc
// @Summary Remove an account (admin only; the administrator itself cannot be removed)
// @Tags Users
// @Security BearerAuth
// @Param uid path string true "Account uid"
// @Success 204
// @Router /users/{uid} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), actor, c.Param("uid")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
