package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdg-garage/potluck-signup/internal/auth"
	"github.com/gdg-garage/potluck-signup/internal/config"
	"github.com/gdg-garage/potluck-signup/internal/database"
	"github.com/gdg-garage/potluck-signup/internal/enrich"
	"github.com/gdg-garage/potluck-signup/internal/export"
	"github.com/gdg-garage/potluck-signup/internal/handlers"
	"github.com/gdg-garage/potluck-signup/internal/notifier"
	"github.com/gdg-garage/potluck-signup/internal/realtime"
	"github.com/gdg-garage/potluck-signup/internal/signup"
	"github.com/gdg-garage/potluck-signup/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Database
	db := database.Connect(cfg)
	st := store.New(db, store.WithRetry(store.NewRetryPolicy(cfg.StoreRetryAttempts, cfg.StoreRetryDelay)))

	feed := newFeed(ctx, cfg)
	defer feed.Close()

	enricher := newEnricher(cfg)
	engine := signup.NewEngine(st,
		signup.WithEnricher(enricher),
		signup.WithNotifier(newNotifier(cfg)),
		signup.WithPublisher(feed),
	)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db, nil)
	h := handlers.Handlers{
		Auth:    authHandler,
		Signup:  handlers.NewSignupHandler(st, engine, enricher),
		Feed:    handlers.NewFeedHandler(st, engine, feed, cfg.CORSOrigins),
		Admin:   handlers.NewAdminHandler(st, engine, newExporter(ctx, cfg), authHandler),
		APIKeys: handlers.NewAPIKeyHandler(st, authHandler),
	}

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, cfg, h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Graceful shutdown failed: %v", err)
	}
}

// newFeed picks the change feed backend. A backend that cannot be reached
// falls back to the in-process hub, which only reaches this instance.
func newFeed(ctx context.Context, cfg *config.Config) realtime.Feed {
	switch cfg.FeedBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		feed, err := realtime.NewRedisFeed(ctx, rdb, cfg.FeedPrefix)
		if err == nil {
			logrus.WithField("addr", cfg.RedisAddr).Info("using redis change feed")
			return feed
		}
		logrus.Errorf("Redis change feed not initialized: %v", err)
		rdb.Close()
	case "amqp":
		logrus.Info("using rabbitmq change feed")
		return realtime.NewAMQPFeed(cfg.AMQPURL)
	case "", "memory":
	default:
		logrus.Warnf("unknown feed backend %q", cfg.FeedBackend)
	}
	return realtime.NewHub()
}

func newEnricher(cfg *config.Config) *enrich.Enricher {
	var normalizer enrich.Normalizer
	if n := enrich.NewOpenAINormalizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel); n != nil {
		normalizer = n
	} else {
		logrus.Info("OpenAI not configured, descriptions are used as search terms")
	}

	var images enrich.ImageSearcher
	if g := enrich.NewGiphySearcher(cfg.GiphyAPIKey, cfg.GiphyRating); g != nil {
		images = g
	} else {
		logrus.Info("Giphy not configured, registrations get no images")
	}
	return enrich.New(normalizer, images)
}

func newNotifier(cfg *config.Config) notifier.Notifier {
	var notifiers notifier.Multi

	if cfg.DiscordBotToken != "" && cfg.DiscordNotificationsChannelID != "" {
		discord, err := notifier.NewDiscordBotNotifier(cfg.DiscordBotToken, cfg.DiscordNotificationsChannelID)
		if err != nil {
			logrus.Errorf("Discord notifier not initialized: %v", err)
		} else {
			notifiers = append(notifiers, discord)
		}
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		telegram, err := notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logrus.Errorf("Telegram notifier not initialized: %v", err)
		} else {
			notifiers = append(notifiers, telegram)
		}
	}

	if len(notifiers) == 0 {
		return nil
	}
	return notifiers
}

func newExporter(ctx context.Context, cfg *config.Config) handlers.Exporter {
	if cfg.GoogleServiceAccountJSON == "" || cfg.GoogleSheetsSpreadsheetID == "" {
		return nil
	}
	exporter, err := export.NewSheetsExporter(ctx, cfg.GoogleServiceAccountJSON, cfg.GoogleSheetsSpreadsheetID, cfg.GoogleSheetsTab)
	if err != nil {
		logrus.Errorf("Google Sheets exporter not initialized: %v", err)
		return nil
	}
	return exporter
}
