package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/api"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/auth"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/realtime"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/server/middleware"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/store"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/config"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state/statemanager"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/transport"
)

type App struct {
	logger       *slog.Logger
	stateManager state.Manager
	eventRouter  *realtime.EventRouter
	store        *store.Store
	wg           sync.WaitGroup
	http         *http.Server
	config       *config.Config

	ctx context.Context
}

func NewApp(logger *slog.Logger, rootCtx context.Context, cfg *config.Config) (*App, error) {
	st, err := store.Open(logger, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	stateManager := statemanager.NewInMemoryManager(logger)
	broadcaster := realtime.NewBroadcaster(logger, stateManager)
	eventRouter := realtime.NewEventRouter(logger, stateManager, broadcaster)
	notifier := realtime.NewNotifier(logger, broadcaster)
	verifier := auth.NewVerifier(logger, cfg.Server.Auth.JWTSecret, st)

	app := &App{
		logger:       logger,
		stateManager: stateManager,
		eventRouter:  eventRouter,
		store:        st,
		config:       cfg,
		ctx:          rootCtx,
	}

	// Create a cycler function that closes over the stateManager and logger.
	cycler := func(userID string) {
		oldest, found := stateManager.FindOldestUserSession(userID)
		if found {
			logger.Info("Cycling connection: closing oldest",
				slog.String("userID", userID),
				slog.String("sessionID", oldest.ID.String()),
			)
			oldest.Transport.Close(errors.New("connection cycled by new connection"))
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	api.RegisterRoutes(engine, logger, st, verifier, notifier, api.Config{TokenTTL: cfg.Server.Auth.TokenTTL})

	// The websocket handshake runs through the admission chain: the auth
	// gate rejects before any session exists, the limiter runs after it so
	// the user id is known.
	engine.GET("/ws", gin.WrapH(middleware.Chain(
		http.HandlerFunc(app.upgradeHandler),
		middleware.RequestMetadataMiddleware(),
		middleware.NewRequestLogger(logger),
		middleware.NewAuthMiddleware(logger, verifier),
		middleware.NewConnectionLimiter(
			logger,
			stateManager.CountUserSessions,
			cycler,
			cfg.Server.ConnectionLimit,
		),
	)))

	app.http = &http.Server{Addr: cfg.Server.Address, Handler: engine, BaseContext: func(l net.Listener) context.Context {
		return app.ctx
	}}

	return app, nil
}

func (a *App) Run() error {
	go func() {
		a.logger.Info("Server starting", slog.String("addr", a.http.Addr))
		if err := a.http.ListenAndServe(); err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
		}
	}()

	<-a.ctx.Done()
	return a.Shutdown()
}

func (a *App) upgradeHandler(w http.ResponseWriter, r *http.Request) {
	reqMeta, _ := middleware.ReqMetadataFrom(r.Context())
	connLogger := a.logger.With(
		slog.String("remoteAddr", reqMeta.IP),
		slog.String("userID", reqMeta.Identity.ID),
	)

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		a.logger.Error("Failed to accept websocket connection", slog.Any("error", err))
		return
	}

	conn := transport.NewConnection(
		r.Context(),
		&a.wg,
		wsConn,
		transport.ConnectionConfig(a.config.Transport),
		nil,
		nil,
		a.logger,
	)

	// The close handler is installed before registration so that any close
	// path, including the error paths below, runs the full teardown.
	conn.SetOnMessageHandler(a.eventRouter.HandleMessage)
	conn.SetOnCloseHandler(func(id uuid.UUID, err error) {
		connLogger.Info("Tearing down session due to closure", slog.String("sessionID", id.String()))
		a.eventRouter.HandleDisconnect(id)
	})

	sess, err := a.stateManager.RegisterSession(conn, reqMeta.Identity, reqMeta.IP)
	if err != nil {
		connLogger.Error("Failed to register session", slog.Any("error", err))
		conn.Close(err)
		return
	}
	// Every session listens on its own direct-notification room, no
	// explicit join required.
	if err := a.stateManager.Join(sess.ID, realtime.UserRoom(reqMeta.Identity.ID)); err != nil {
		connLogger.Error("Failed to join user room", slog.Any("error", err))
		conn.Close(err)
		return
	}

	connLogger.Info("User connection fully established", slog.String("sessionID", sess.ID.String()))
	conn.Run()
	<-conn.Done()
}

// Shutdown runs the graceful shutdown sequence.
func (a *App) Shutdown() error {
	a.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// close all active WebSocket connections.
	a.logger.Info("Closing all active connections...")
	for _, sess := range a.stateManager.Sessions() {
		sess.Transport.Close(errors.New("graceful shutdown"))
	}

	// wait for all connection goroutines to finish their cleanup.
	a.wg.Wait()

	if err := a.store.Close(); err != nil {
		a.logger.Error("Failed to close store", slog.Any("error", err))
	}
	a.logger.Info("Server shut down gracefully.")
	return nil
}
