package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chiasentiment/Samsonsblog/config"
	"github.com/chiasentiment/Samsonsblog/internal/db"
	"github.com/chiasentiment/Samsonsblog/internal/handlers"
	"github.com/chiasentiment/Samsonsblog/internal/mq"
	"github.com/chiasentiment/Samsonsblog/internal/services"
	"github.com/chiasentiment/Samsonsblog/internal/session"
	"github.com/chiasentiment/Samsonsblog/internal/storage"
	"github.com/chiasentiment/Samsonsblog/internal/store"
	"github.com/chiasentiment/Samsonsblog/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.MQ
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	events, err := newEventPublisher(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		closeEvents(events)
		return nil, err
	}

	render, err := web.NewRenderer()
	if err != nil {
		_ = dbConn.Close()
		closeEvents(events)
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)

	userService := services.NewUserService(userRepo)
	var publisher services.EventPublisher
	if events != nil {
		publisher = events
	}
	blogService := services.NewBlogService(postRepo, commentRepo, publisher)

	sessions := session.NewManager(cfg.SessionSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(handlers.WithActor(sessions, userService))

	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, userService, sessions, render)
	handlers.BlogRouter(router, blogService, render)
	if images != nil {
		if err := images.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			closeEvents(events)
			return nil, err
		}
		handlers.ImageRouter(router, images)
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     events,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	closeEvents(s.events)
	return s.httpServer.Close()
}

func newEventPublisher(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.MQ.Provider)) {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.MQ.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.MQ.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq provider %q", cfg.MQ.Provider)
	}
}

func newImageStore(ctx context.Context, cfg config.Config) (*storage.ImageStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Provider)) {
	case "":
		return nil, nil
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewImageStore(backend), nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewImageStore(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}

func closeEvents(events *mq.MQ) {
	if events != nil {
		_ = events.Close()
	}
}
