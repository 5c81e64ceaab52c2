package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"xr-archive/internal/config"
	"xr-archive/internal/session"
	"xr-archive/internal/storage"

	"xr-archive/internal/api/handlers"
	"xr-archive/internal/api/middleware"
)

type Server struct {
	cfg     *config.Config
	lib     *session.Library
	storage *storage.Client
	router  *gin.Engine
	http    *http.Server
}

func New(cfg *config.Config, lib *session.Library, storage *storage.Client) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		lib:     lib,
		storage: storage,
		router:  gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), middleware.SilentLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}

	// "Authorization" must be allowed so the frontend can send the JWT;
	// "Range" so the player can seek.
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Range"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "Content-Range", "Accept-Ranges"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	trackHandler := handlers.NewTrackHandler(s.lib)
	archiveHandler := handlers.NewArchiveHandler(s.lib, s.storage, s.cfg.Server.MaxUploadMB<<20)
	mediaHandler := handlers.NewMediaHandler(s.lib)

	auth := middleware.RequireAuth(s.cfg.Server.JWTSecret)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "xr-archive"})
	})

	// Object URLs; the <audio> element passes its token as ?token=
	s.router.GET(s.cfg.Archive.MediaPrefix+":token", auth, mediaHandler.StreamMedia)

	v1 := s.router.Group("/api/v1")
	v1.Use(auth)
	{
		// --- IMPORT
		v1.POST("/archive/import", archiveHandler.ImportLibrary)
		v1.POST("/archive/upload", archiveHandler.UploadFolder)
		v1.DELETE("/archive", archiveHandler.Release)
		v1.GET("/archive/stats", archiveHandler.GetStats)

		// --- BROWSE
		v1.GET("/categories", trackHandler.GetCategories)
		v1.GET("/tracks", trackHandler.GetTracks)
		v1.GET("/tracks/:id", trackHandler.GetTrack)
		v1.GET("/tracks/:id/next", trackHandler.GetNext)
		v1.GET("/tracks/:id/prev", trackHandler.GetPrev)
		v1.GET("/tracks/:id/download", trackHandler.DownloadTrack)
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on the configured port until Shutdown is called.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
