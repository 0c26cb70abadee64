package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nguyentranbao-ct/catalog-browser/internal/config"
	pkgmdw "github.com/nguyentranbao-ct/catalog-browser/internal/server/middleware"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/logger"
	"go.uber.org/fx"
)

func NewEcho(conf *config.Config, handler Controller, socket *SocketHandler) (*echo.Echo, error) {
	corsPattern, err := regexp.Compile(conf.Server.CORSPattern)
	if err != nil {
		return nil, fmt.Errorf("compile cors pattern: %w", err)
	}

	httpLog := logger.MustNamed("http")
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = pkgmdw.ErrorHandler(httpLog)

	logConfig := pkgmdw.LogRequestConfig{
		Logger: httpLog,
		Enabled: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path != "/health" && path != "/metrics" && !pkgmdw.IsWebSocket(c)
		},
	}

	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.CORS(corsPattern))
	e.Use(pkgmdw.ForwardBearer())
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))

	if conf.Server.PprofEnabled {
		pkgmdw.PprofWrap(e)
	}

	e.GET("/health", handler.Health)

	api := e.Group("/api/v1")
	api.GET("/catalog", handler.Browse)
	api.GET("/categories", handler.Categories)
	api.GET("/browse/ws", socket.Serve)

	return e, nil
}

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	e *echo.Echo,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					logger.Errorw(ctx, "HTTP server stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
