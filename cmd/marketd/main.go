package main

import (
	"context"
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/config/di"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/messenger"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	config.Init("marketd")

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	defer func() {
		if err := container.Delete(); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to close services")
		}
	}()

	if config.Get().AmqpUri != "" {
		messenger.NewEventPublisher(container.GetMessenger()).Listen()
	}

	metadataService := container.GetMetadataService()
	event.AddEventListener(event.BaseUriUpdatedEvent, func(msg interface{}) {
		metadataService.Purge()
	})

	server := &http.Server{
		Addr:    ":" + config.Get().ApiPort,
		Handler: container.GetApiServer().Router(),
	}

	go func() {
		zap.L().With(zap.String("port", config.Get().ApiPort), zap.String("collection", container.GetRegistry().Address().Hex())).Info("Marketplace started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().With(zap.Error(err)).Fatal("Failed to start marketplace api")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zap.L().Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to shutdown cleanly")
	}
	event.RemoveEventListeners()
}
