package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/config"
	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/database"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/filestore"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/integration/googleads"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/integration/telegram"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/lock"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/queue"
	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

type storage struct {
	Leads     entity.LeadRepositoryInterface
	Quiz      entity.QuizLeadRepositoryInterface
	Postbacks entity.PostbackRepositoryInterface
	DB        *sql.DB
}

func (s *storage) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func openStorage(cfg *config.Config, log logrus.FieldLogger) (*storage, error) {
	if cfg.StorageDriver == config.StoragePostgres {
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("🐘 Postgres storage ready")
		return &storage{
			Leads:     database.NewLeadRepository(db),
			Quiz:      database.NewQuizLeadRepository(db),
			Postbacks: database.NewPostbackRepository(db),
			DB:        db,
		}, nil
	}

	leads, err := filestore.NewLeadRepository(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	quiz, err := filestore.NewQuizLeadRepository(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	postbacks, err := filestore.NewPostbackRepository(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	log.WithField("dir", cfg.DataDir).Info("📁 File storage ready")
	return &storage{Leads: leads, Quiz: quiz, Postbacks: postbacks}, nil
}

// notificationChannel returns nil when Telegram is not configured, so the use
// cases skip notifications instead of failing every send.
func notificationChannel(tg *telegram.Client, log logrus.FieldLogger) usecase.NotificationChannel {
	if !tg.Enabled() {
		log.Warn("⚠️ Telegram not configured, lead notifications disabled")
		return nil
	}
	return tg
}

// openLocker uses Redis when configured so several instances share locks.
func openLocker(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (usecase.Locker, *redis.Client, error) {
	if cfg.RedisURL == "" {
		return lock.NewKeyedMutex(), nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	log.WithField("ttl", cfg.LockTTL).Info("🔒 Redis locks enabled")
	return lock.NewRedisLocker(rdb, cfg.LockTTL, log), rdb, nil
}

// openConversions publishes to RabbitMQ when configured; failed uploads end up
// in the dead-letter queue. Without RabbitMQ uploads run in-process.
func openConversions(ctx context.Context, cfg *config.Config, ads *googleads.Client, log logrus.FieldLogger) (usecase.ConversionDispatcher, *queue.RabbitMQ, error) {
	if cfg.RabbitMQURL == "" {
		return usecase.NewDirectConversionDispatcher(ads, log), nil, nil
	}

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		return nil, nil, err
	}
	consumerCh, err := rabbit.Conn.Channel()
	if err != nil {
		rabbit.Close()
		return nil, nil, fmt.Errorf("open consumer channel: %w", err)
	}

	worker := queue.NewWorker(consumerCh, ads, log)
	go func() {
		if err := worker.Start(ctx, queue.QueueName); err != nil {
			log.WithError(err).Error("conversion worker stopped")
		}
	}()

	log.Info("🐇 Conversions go through RabbitMQ")
	return queue.NewProducer(rabbit.Ch), rabbit, nil
}
