// Package bootstrap opens the backing stores and the notification actor
// shared by the gateway and the order service.
package bootstrap

import (
	"context"
	"time"

	"github.com/example/foodshop/pkg/catalog"
	"github.com/example/foodshop/pkg/config"
	"github.com/example/foodshop/pkg/notify"
	"github.com/example/foodshop/pkg/orders"
	"github.com/example/foodshop/pkg/repository"
	"go.uber.org/zap"
)

type Stores struct {
	MySQL    *repository.MySQLRepository
	Redis    *repository.RedisRepository
	Mongo    *repository.MongoRepository
	Notifier *notify.Notifier

	logger *zap.Logger
}

// Open connects MySQL (required), Redis and MongoDB (both optional: a
// failed ping is logged and the store left nil) and starts the notifier.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	s := &Stores{logger: logger}

	db, err := repository.OpenMySQL(&cfg.MySQL)
	if err != nil {
		return nil, err
	}
	s.MySQL = repository.NewMySQLRepository(db)
	if err := s.MySQL.Ping(ctx); err != nil {
		s.MySQL.Close()
		return nil, err
	}
	logger.Info("MySQL connected", zap.String("database", cfg.MySQL.Database))

	if cfg.Redis.Addr != "" {
		redisRepo := repository.NewRedisRepository(&cfg.Redis)
		if err := redisRepo.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed, running without cache", zap.Error(err))
			redisRepo.Close()
		} else {
			s.Redis = redisRepo
			logger.Info("Redis connected successfully")
		}
	}

	var activity notify.ActivityStore
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
		if err == nil {
			err = mongoRepo.Ping(ctx)
		}
		if err != nil {
			logger.Warn("MongoDB connection failed, activity log disabled", zap.Error(err))
		} else {
			s.Mongo = mongoRepo
			activity = mongoRepo
			logger.Info("MongoDB connected successfully")
		}
	}

	var mailer notify.EmailSender
	if cfg.Email.APIKey != "" {
		mailer = notify.NewMailer(&cfg.Email)
	} else {
		logger.Warn("Email API key not set, emails disabled")
	}

	s.Notifier, err = notify.NewNotifier(activity, mailer, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// OrderCache returns Redis as an order cache, or a nil interface when
// Redis is unavailable.
func (s *Stores) OrderCache() orders.Cache {
	if s.Redis == nil {
		return nil
	}
	return s.Redis
}

func (s *Stores) ProductCache() catalog.Cache {
	if s.Redis == nil {
		return nil
	}
	return s.Redis
}

func (s *Stores) Close() {
	if s.Notifier != nil {
		s.Notifier.Close()
	}
	if s.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Mongo.Close(ctx); err != nil {
			s.logger.Warn("Failed to close MongoDB", zap.Error(err))
		}
	}
	if s.Redis != nil {
		s.Redis.Close()
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			s.logger.Warn("Failed to close MySQL", zap.Error(err))
		}
	}
}
