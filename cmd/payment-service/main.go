package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/foodordering/system/internal/application/paymentflow"
	"github.com/foodordering/system/internal/bootstrap"
	"github.com/foodordering/system/internal/infrastructure/kafka"
	"github.com/foodordering/system/internal/messaging"
	"github.com/foodordering/system/internal/repository/postgres"
	"github.com/foodordering/system/internal/scheduler"
	"github.com/foodordering/system/pkg/saga"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "payment-service", "payment_service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	creditRepo := postgres.NewCreditRepository(app.Pool)
	responseOutboxStore := postgres.NewOutboxStore(app.Pool, postgres.PaymentResponseOutboxTable)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Application ---
	responseOutbox := paymentflow.NewResponseOutboxHelper(responseOutboxStore)
	requestHandler := paymentflow.NewRequestHandler(txManager, paymentRepo, creditRepo, responseOutbox, app.Logger)

	// --- Consumer and scheduler ---
	topics := app.Config.Kafka.Topics
	paymentRequests := kafka.NewConsumer(app.Config.Kafka.Brokers, topics.PaymentRequest, app.Config.Kafka.ConsumerGroup,
		messaging.NewPaymentRequestListener(requestHandler, app.Logger).Handle, app.Logger)

	responseScheduler := scheduler.New("payment-response-outbox",
		scheduler.NewStoreSource(responseOutboxStore, saga.OrderSagaName,
			saga.StatusProcessing, saga.StatusCompensated, saga.StatusFailed),
		messaging.NewPaymentResponsePublisher(app.Producer, topics.PaymentResponse),
		app.Config.Outbox.PollInterval, app.Logger)
	responseCleaner := scheduler.NewCleaner("payment-response-outbox-cleaner",
		responseOutboxStore, saga.OrderSagaName, app.Config.Outbox.CleanInterval, app.Logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return paymentRequests.Run(gCtx) })
	g.Go(func() error { return responseScheduler.Run(gCtx) })
	g.Go(func() error { return responseCleaner.Run(gCtx) })
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
	app.Logger.Info().Msg("Payment service exited")
}
