package main

import (
	"context"
	"flag"

	"github.com/ghaggin/authgate/internal/backend"
	"github.com/ghaggin/authgate/internal/config"
	"github.com/ghaggin/authgate/internal/logging"
	"github.com/ghaggin/authgate/internal/middleware"
	"github.com/ghaggin/authgate/internal/session"
	"github.com/ghaggin/authgate/internal/storage"
	"github.com/ghaggin/authgate/internal/web"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	var configPath = flag.String("config", config.DefaultPath, "path to the yaml config file")
	flag.Parse()

	fx.New(options(config.Path(*configPath))).Run()
}

func options(path config.Path) fx.Option {
	newPath := func() config.Path {
		return path
	}

	return fx.Options(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Provide(
			newPath,
			config.New,
			logging.New,
			storage.New,
			session.NewStore,
			middleware.NewSessionManager,
			fx.Annotate(backend.New, fx.As(new(web.Backend))),
		),
		// hydrate before the server starts taking requests
		fx.Invoke(session.RegisterHooks),
		web.Module,
		fx.Invoke(syncOnStop),
	)
}

func syncOnStop(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
}
