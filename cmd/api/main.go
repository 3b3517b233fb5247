package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/book-review-api/internal/config"
	"github.com/sngm3741/book-review-api/internal/infrastructure/memory"
	mongodoc "github.com/sngm3741/book-review-api/internal/infrastructure/mongo"
	"github.com/sngm3741/book-review-api/internal/infrastructure/notify"
	"github.com/sngm3741/book-review-api/internal/logger"
	"github.com/sngm3741/book-review-api/internal/metrics"
	publicapp "github.com/sngm3741/book-review-api/internal/public/application"
	"github.com/sngm3741/book-review-api/internal/server"
)

// discordRetryDelay is the pause between Discord delivery attempts.
const discordRetryDelay = 200 * time.Millisecond

// reviewStore is what the server needs from either storage driver.
type reviewStore interface {
	publicapp.ReviewRepository
	server.Pinger
}

func main() {
	// 本番ではシステムの環境変数を使うため .env が無くても続行する。
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Development(), os.Stdout)
	if envErr != nil {
		log.Debug().Msg(".env が見つからないため環境変数のみを使用します")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("サーバー起動に失敗")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	var (
		store      reviewStore
		failures   notify.FailureStore
		disconnect func(context.Context) error
	)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("メモリストアで起動します。再起動でレビューは失われます")
		store = memory.NewReviewRepository()
	default:
		client, err := connectMongo(cfg)
		if err != nil {
			return err
		}
		disconnect = client.Disconnect

		db := client.Database(cfg.MongoDatabase)
		reviews := mongodoc.NewReviewRepository(db, cfg.ReviewCollection)
		failed := mongodoc.NewFailedNotificationRepository(db, cfg.FailedNotificationCollection)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := reviews.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("reviews のインデックス作成に失敗")
		}
		if err := failed.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed_notifications のインデックス作成に失敗")
		}

		store = reviews
		failures = failed
	}

	rec := metrics.New()
	svc := publicapp.NewReviewService(publicapp.ReviewServiceConfig{
		Repository:    store,
		Notifier:      buildNotifier(cfg, failures, log),
		Observer:      rec,
		Logger:        log,
		NotifyTimeout: cfg.Notify.Timeout,
	})

	app := server.New(cfg, server.Dependencies{
		Logger:     log,
		Store:      store,
		Reviews:    svc,
		Metrics:    rec,
		OnShutdown: disconnect,
	})
	return app.Run()
}

func connectMongo(cfg config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("MongoDB 接続に失敗しました: %w", err)
	}
	return client, nil
}

// buildNotifier assembles the configured channels. With none configured the
// review is only logged.
func buildNotifier(cfg config.Config, failures notify.FailureStore, log zerolog.Logger) notify.Notifier {
	var channels notify.Multi

	mailer := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.User,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		Recipients: cfg.Notify.Recipients,
	}, log.With().Str("channel", "smtp").Logger())
	if mailer.Enabled() {
		channels = append(channels, mailer)
	} else {
		log.Error().Msg("SMTP credentials missing in environment; review emails disabled")
	}

	messenger := notify.NewMessengerNotifier(notify.MessengerConfig{
		Endpoint: cfg.Messenger.Endpoint,
		Destinations: []notify.MessengerDestination{
			{Name: cfg.Messenger.DiscordDestination, Format: notify.FormatDiscord, Attempts: 3, Delay: discordRetryDelay},
			{Name: cfg.Messenger.SlackDestination, Format: notify.FormatSlack, Attempts: 1},
		},
		ReviewsURL: cfg.Messenger.ReviewsURL,
	}, &http.Client{Timeout: cfg.Messenger.Timeout}, log.With().Str("channel", "messenger").Logger())
	if messenger.Enabled() {
		channels = append(channels, messenger)
	}

	if len(channels) == 0 {
		return notify.NewLogNotifier(log)
	}
	if failures == nil {
		return channels
	}
	return notify.NewRecording(channels, failures, log)
}
