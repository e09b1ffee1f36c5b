package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"toybox/internal/bag"
	"toybox/internal/config"
	"toybox/internal/handlers"
	"toybox/pkg/logger"
)

func main() {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./toybox.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load configuration")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.Log

	store := bag.NewStore()

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		log.WithError(err).Fatal("failed to open static files")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.NotFound(handlers.NotFound)

	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))

	homeHandler := handlers.NewHomeHandler(store, cfg.Bag)
	bagHandler := handlers.NewBagHandler(store, cfg, log)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		homeHandler.RegisterRoutes(r)
		bagHandler.RegisterRoutes(r)
	})
	bagHandler.RegisterStreams(r)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      0, // SSE and websocket connections stay open
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.WithError(err).Fatal("server error")
	case sig := <-sigChan:
		log.Infof("received signal %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

//go:embed static/*
var embeddedStatic embed.FS
