package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/auth"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/realtime"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/store"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
)

const identityKey = "identity"

// standardResponse sends a consistent JSON response
func standardResponse(c *gin.Context, code int, status string, data any, err string) {
	response := gin.H{"status": status}
	if data != nil {
		response["data"] = data
	}
	if err != "" {
		response["error"] = err
	}
	c.JSON(code, response)
}

// RequireAuth resolves the bearer token on REST calls through the same
// credential verifier that gates the websocket handshake.
func RequireAuth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			standardResponse(c, http.StatusUnauthorized, "error", nil, "unauthorized")
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) state.Identity {
	identity, _ := c.MustGet(identityKey).(state.Identity)
	return identity
}

// RegisterRoutes mounts the REST surface. Every mutating handler persists
// first, then broadcasts the committed change; the HTTP response stays the
// source of truth.
func RegisterRoutes(r *gin.Engine, logger *slog.Logger, st *store.Store, verifier *auth.Verifier, notifier *realtime.Notifier, cfg Config) {
	authHandler := &AuthHandler{store: st, verifier: verifier, tokenTTL: cfg.TokenTTL}
	projects := &ProjectHandler{store: st, notifier: notifier}
	tasks := &TaskHandler{store: st, notifier: notifier}
	invitations := &InvitationHandler{store: st, notifier: notifier}
	notifications := &NotificationHandler{store: st}

	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("", RequireAuth(verifier))
	authed.GET("/projects", projects.List)
	authed.POST("/projects", projects.Create)
	authed.GET("/projects/:id", projects.Get)
	authed.PUT("/projects/:id", projects.Update)
	authed.DELETE("/projects/:id", projects.Delete)
	authed.POST("/projects/:id/members", projects.AddMember)
	authed.DELETE("/projects/:id/members/:userId", projects.RemoveMember)

	authed.GET("/projects/:id/tasks", tasks.List)
	authed.POST("/projects/:id/tasks", tasks.Create)
	authed.PUT("/tasks/:id", tasks.Update)
	authed.PUT("/tasks/:id/move", tasks.Move)
	authed.DELETE("/tasks/:id", tasks.Delete)

	authed.POST("/projects/:id/invitations", invitations.Create)
	authed.POST("/invitations/:id/respond", invitations.Respond)

	authed.GET("/notifications", notifications.List)
	authed.PUT("/notifications/:id/read", notifications.MarkRead)

	logger.Info("REST routes registered")
}

// Config carries the API-level knobs out of the main config.
type Config struct {
	TokenTTL time.Duration
}
