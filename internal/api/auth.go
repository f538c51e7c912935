package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/auth"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/store"
)

// AuthHandler covers account registration and login. Token verification for
// everything else lives in RequireAuth and the websocket gate.
type AuthHandler struct {
	store    *store.Store
	verifier *auth.Verifier
	tokenTTL time.Duration
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid registration payload")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to process password")
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), req.Email, req.Name, string(hash))
	if errors.Is(err, store.ErrDuplicate) {
		standardResponse(c, http.StatusConflict, "error", nil, "email already registered")
		return
	}
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to create account")
		return
	}
	standardResponse(c, http.StatusCreated, "created", user, "")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid login payload")
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		standardResponse(c, http.StatusUnauthorized, "error", nil, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		standardResponse(c, http.StatusUnauthorized, "error", nil, "invalid credentials")
		return
	}

	token, err := h.verifier.Issue(user.ID, user.Name, h.tokenTTL)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to issue token")
		return
	}
	standardResponse(c, http.StatusOK, "ok", gin.H{"token": token, "user": user}, "")
}
