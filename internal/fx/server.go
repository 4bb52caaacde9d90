package fx

import (
	"context"
	"errors"
	"net"
	"net/http"

	"Parking/config"
	"Parking/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var ServerModule = fx.Module("server",
	fx.Provide(
		newHTTPServer,
	),
	fx.Invoke(
		startServer,
	),
)

func newHTTPServer(cfg *config.Config, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

func startServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, srv *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info().
				Str("address", srv.Addr).
				Str("environment", cfg.App.Environment).
				Msg("http server listening")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("http server stopped unexpectedly")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("http server shutting down")
			return srv.Shutdown(ctx)
		},
	})
}
