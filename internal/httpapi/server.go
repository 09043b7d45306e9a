// Package httpapi exposes the chat and sentiment services over HTTP with the
// CORS policy the web frontend expects.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ServerOpts struct {
	Router *gin.Engine
	Addr   string
	Log    zerolog.Logger
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully with a short drain window.
func Serve(ctx context.Context, opts ServerOpts) error {
	srv := &http.Server{
		Addr:    opts.Addr,
		Handler: opts.Router,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			opts.Log.Warn().Err(err).Msg("shutdown drain incomplete")
		}
	}()

	opts.Log.Info().Str("addr", opts.Addr).Msg("server listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpapi: %w", err)
	}

	return nil
}

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	return router
}

func round(value float64, places int) float64 {
	shift := 1.0
	for i := 0; i < places; i++ {
		shift *= 10
	}

	return float64(int64(value*shift+0.5)) / shift
}
