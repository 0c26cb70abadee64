package app

import (
	"github.com/nguyentranbao-ct/catalog-browser/internal/config"
	"github.com/nguyentranbao-ct/catalog-browser/internal/server"
	"github.com/nguyentranbao-ct/catalog-browser/internal/usecase"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

// New builds the application graph. Constructors are lazy, so callers only
// pay for what their invokes and populates reach.
func New(opts ...fx.Option) *fx.App {
	conf := config.MustLoad()
	if err := logger.Init(logger.Config{Level: conf.Log.Level, Encoding: conf.Log.Encoding}); err != nil {
		panic(err)
	}
	log := logger.MustNamed("app")
	log.Debugw("config loaded", "catalog", conf.Catalog, "server", conf.Server)

	return fx.New(append([]fx.Option{
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newTokenSource,
			newRESTClient,
			newGraphQLClient,
			newTransports,
			newPolicy,
			newMongoDB,
			newActivityStore,
			newPublisher,
			fx.Annotate(newActivityRecorder, fx.As(new(usecase.ActivityRecorder))),
			newCategoryUsecase,

			usecase.NewCatalogUsecase,

			server.NewHandler,
			server.NewSocketHandler,
			server.NewEcho,
		),
		fx.Supply(conf),
	}, opts...)...)
}

func Invoke(funcs ...any) *fx.App {
	return New(fx.Invoke(funcs...))
}
