package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"taskcompass/internal/handler"
	"taskcompass/internal/model"
)

func TestRegister(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, nil, http.MethodPost, "/register", gin.H{
		"username": "carol",
		"password": "password",
		"email":    "carol@example.com",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp handler.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "carol", resp.User.Username)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.NotContains(t, w.Body.String(), "hashedPassword")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, nil, http.MethodPost, "/register", gin.H{
		"username": "alice",
		"password": "password",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_WeakPassword(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, nil, http.MethodPost, "/register", gin.H{
		"username": "carol",
		"password": "123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, nil, http.MethodPost, "/login", gin.H{
		"username": "alice",
		"password": "password",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, e.alice.UID, resp.User.UID)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, nil, http.MethodPost, "/login", gin.H{
		"username": "alice",
		"password": "nope",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserList_AdminOnly(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, e.alice, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, e.admin, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var accounts []model.UserAccount
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &accounts))
	assert.Len(t, accounts, 3)
}

func TestUserCreate_AdminOnly(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, e.bob, http.MethodPost, "/users", gin.H{
		"username": "carol",
		"password": "password",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, e.admin, http.MethodPost, "/users", gin.H{
		"username": "carol",
		"password": "password",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	var account model.UserAccount
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
	assert.Equal(t, model.RoleAdmin, account.Role)
}

func TestUserDelete(t *testing.T) {
	e := setupEnv(t)

	// The canonical admin account cannot be removed.
	w := e.do(t, e.admin, http.MethodDelete, "/users/"+model.AdminUID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, e.admin, http.MethodDelete, "/users/"+e.bob.UID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, e.admin, http.MethodDelete, "/users/"+e.bob.UID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
