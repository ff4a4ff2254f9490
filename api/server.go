package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/drawroom/drawroom-server/game"
	"github.com/drawroom/drawroom-server/util"
	"github.com/drawroom/drawroom-server/ws"
)

const shutdownDeadline = 10 * time.Second

type Server struct {
	config    *util.Config
	wsManager *ws.Manager
	directory *game.Directory
	router    *gin.Engine
	srv       *http.Server
	logger    zerolog.Logger
}

func NewServer(config *util.Config, directory *game.Directory, wsManager *ws.Manager, logger zerolog.Logger) *Server {
	router := gin.Default()
	router.Use(cors.Default())

	server := &Server{
		config:    config,
		wsManager: wsManager,
		directory: directory,
		router:    router,
		logger:    logger.With().Str("component", "api-server").Logger(),
	}

	router.GET("/ws", server.wsManager.ServeWS)
	router.GET("/healthz", server.Health)
	router.GET("/rooms", server.PublicRooms)

	server.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", config.Port),
		Handler: router,
	}

	return server
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)

	go func() {
		errc <- s.srv.ListenAndServe()
	}()

	s.logger.Info().Str("addr", s.srv.Addr).Msg("server started")

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()

		return s.srv.Shutdown(shCtx)
	}
}
