package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kiwoombot/internal/broker/kiwoom"
	"kiwoombot/internal/broker/kiwoom/ws"
	"kiwoombot/internal/config"
	"kiwoombot/internal/engine"
	"kiwoombot/internal/logger"
	"kiwoombot/internal/storage"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logger.New(logger.Config{
		Level:      cfg.Runtime.Log.Level,
		Format:     cfg.Runtime.Log.Format,
		Output:     cfg.Runtime.Log.File,
		MaxSize:    cfg.Runtime.Log.MaxSize,
		MaxBackups: cfg.Runtime.Log.MaxBackups,
		MaxAge:     cfg.Runtime.Log.MaxAge,
		Compress:   cfg.Runtime.Log.Compress,
	})

	logger.Info("Бот запущен.")

	// Пустой storage.path отключает журнал.
	var sink engine.Sink
	if cfg.Storage.Path != "" {
		journal, err := storage.Open(cfg.Storage.Path, logger)
		if err != nil {
			logger.WithError(err).Fatal("Не удалось открыть журнал.")
		}
		defer journal.Close()
		sink = journal
	}

	tokens := kiwoom.NewTokenManager(cfg.Kiwoom.RestURL, cfg.Kiwoom.AppKey, cfg.Kiwoom.Secret, logger)
	client := kiwoom.New(cfg.Kiwoom.RestURL, cfg.Kiwoom.AccountNo, tokens, cfg.Bot.LiquidationPause, logger)
	feed := ws.New(cfg.Kiwoom.WSURL, cfg.Kiwoom.AccountNo, tokens, logger)

	eng := engine.New(cfg, client, feed, sink, nil, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := eng.Start(ctx); err != nil {
			logger.WithError(err).Fatal("Движок завершился с ошибкой.")
		}
	}()

	<-sigCh
	cancel()
	<-done

	logger.Info("Бот остановлен.")
}
