package storage

import (
	"context"
	"fmt"

	"github.com/ghaggin/authgate/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

// New builds the configured driver.
func New(p Params) (Storage, error) {
	c := p.Config.Storage

	switch c.Driver {
	case "file":
		p.Log.Info("using file storage", zap.String("path", c.Path))
		return NewFile(afero.NewOsFs(), c.Path), nil

	case "memory":
		p.Log.Warn("using memory storage, sessions will not survive a restart")
		return NewFile(afero.NewMemMapFs(), c.Path), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		p.LC.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					p.Log.Warn("redis not reachable", zap.String("addr", c.Redis.Addr), zap.Error(err))
				}
				return nil
			},
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})
		p.Log.Info("using redis storage", zap.String("addr", c.Redis.Addr), zap.String("prefix", c.Redis.Prefix))
		return NewRedis(client, c.Redis.Prefix), nil
	}

	return nil, fmt.Errorf("unrecognized storage driver %q", c.Driver)
}
