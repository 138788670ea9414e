package main

import (
	"context"

	"go.uber.org/zap"

	"courierbot/internal/bot"
	"courierbot/internal/delivery"
	"courierbot/internal/dispatch"
	"courierbot/internal/enhance"
	"courierbot/internal/parser"
	"courierbot/internal/scheduler"
	"courierbot/internal/storage"
	"courierbot/internal/timeparse"
	"courierbot/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize scheduler
	sched := scheduler.New(scheduler.Config{
		Workers:   cfg.Scheduler.Workers,
		QueueSize: cfg.Scheduler.QueueSize,
		Timezone:  cfg.Scheduler.Timezone,
	}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)
	defer sched.Stop()

	// Initialize delivery channels
	sms := delivery.NewTwilioChannel(
		cfg.Twilio.AccountSID,
		cfg.Twilio.AuthToken,
		cfg.Twilio.FromNumber,
		logger,
	)
	email := delivery.NewSMTPChannel(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Address,
		cfg.SMTP.Password,
		cfg.SMTP.FromName,
		logger,
	)
	fanout := delivery.NewFanout(sms, email, cfg.Delivery.Concurrency, logger)

	// Initialize the LLM enhancer and the template grammar
	enhancer := enhance.NewOpenAIEnhancer(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		logger,
	)
	p := parser.New(timeparse.New(sched.Location()), logger)

	// Initialize dispatcher
	dispatcher := dispatch.New(
		sms,
		email,
		fanout,
		enhancer,
		sched,
		store,
		cfg.Twilio.OwnerNumber,
		logger,
	)

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, p, enhancer, dispatcher, sched, store, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
