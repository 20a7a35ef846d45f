package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/foodordering/system/internal/application/restaurantflow"
	"github.com/foodordering/system/internal/bootstrap"
	"github.com/foodordering/system/internal/infrastructure/kafka"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/internal/repository/postgres"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "restaurant-service", "restaurant_service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	restaurantRepo := postgres.NewRestaurantRepository(app.Pool)
	approvalRepo := postgres.NewApprovalRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Application ---
	topics := app.Config.Kafka.Topics
	responses := messaging.NewEventPublisher(app.Producer, topics)
	approvalHandler := restaurantflow.NewApprovalRequestHandler(txManager, restaurantRepo, approvalRepo, responses, app.Logger)

	approvalRequests := kafka.NewConsumer(app.Config.Kafka.Brokers, topics.ApprovalRequest, app.Config.Kafka.ConsumerGroup,
		messaging.NewApprovalRequestListener(approvalHandler, app.Logger).Handle, app.Logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return approvalRequests.Run(gCtx) })
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		app.Logger.Error().Err(err).Msg("Service error")
	}
	app.Logger.Info().Msg("Restaurant service exited")
}
