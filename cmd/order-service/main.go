package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/foodordering/system/internal/application/ordersaga"
	"github.com/foodordering/system/internal/bootstrap"
	"github.com/foodordering/system/internal/handler"
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

	app, err := bootstrap.New(ctx, "order-service", "order_service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	orderRepo := postgres.NewOrderRepository(app.Pool)
	customerRepo := postgres.NewCustomerRepository(app.Pool)
	restaurantRepo := postgres.NewRestaurantRepository(app.Pool)
	paymentOutboxStore := postgres.NewOutboxStore(app.Pool, postgres.PaymentOutboxTable)
	approvalOutboxStore := postgres.NewOutboxStore(app.Pool, postgres.ApprovalOutboxTable)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Messaging ---
	topics := app.Config.Kafka.Topics
	events := messaging.NewEventPublisher(app.Producer, topics)

	// --- Application ---
	paymentOutbox := ordersaga.NewPaymentOutboxHelper(paymentOutboxStore)
	approvalOutbox := ordersaga.NewApprovalOutboxHelper(approvalOutboxStore)
	paymentSaga := ordersaga.NewPaymentSaga(txManager, orderRepo, paymentOutbox, approvalOutbox, events, app.Logger)
	approvalSaga := ordersaga.NewApprovalSaga(txManager, orderRepo, paymentOutbox, approvalOutbox, events, app.Logger)
	createOrder := ordersaga.NewCreateOrderHandler(txManager, orderRepo, customerRepo, restaurantRepo, paymentOutbox, events, app.Logger)
	trackOrder := ordersaga.NewTrackOrderHandler(orderRepo)

	// --- HTTP server ---
	router := handler.NewRouter(handler.RouterDeps{
		Pool:        app.Pool,
		CreateOrder: createOrder,
		TrackOrder:  trackOrder,
		Metrics:     app.Metrics,
		CORSConfig:  app.Config.Server.CORS,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	// --- Consumers ---
	brokers := app.Config.Kafka.Brokers
	group := app.Config.Kafka.ConsumerGroup
	paymentResponses := kafka.NewConsumer(brokers, topics.PaymentResponse, group,
		messaging.NewPaymentResponseListener(paymentSaga, app.Logger).Handle, app.Logger)
	approvalResponses := kafka.NewConsumer(brokers, topics.ApprovalResponse, group,
		messaging.NewApprovalResponseListener(approvalSaga, app.Logger).Handle, app.Logger)
	customerEvents := kafka.NewConsumer(brokers, topics.CustomerCreated, group,
		messaging.NewCustomerCreatedListener(customerRepo, app.Logger).Handle, app.Logger)

	// --- Outbox schedulers ---
	pollInterval := app.Config.Outbox.PollInterval
	cleanInterval := app.Config.Outbox.CleanInterval
	paymentScheduler := scheduler.New("payment-outbox",
		scheduler.NewStoreSource(paymentOutboxStore, saga.OrderSagaName, saga.StatusStarted, saga.StatusCompensating),
		messaging.NewPaymentRequestPublisher(app.Producer, topics.PaymentRequest),
		pollInterval, app.Logger)
	approvalScheduler := scheduler.New("approval-outbox",
		scheduler.NewStoreSource(approvalOutboxStore, saga.OrderSagaName, saga.StatusProcessing),
		messaging.NewApprovalRequestPublisher(app.Producer, topics.ApprovalRequest),
		pollInterval, app.Logger)
	paymentCleaner := scheduler.NewCleaner("payment-outbox-cleaner", paymentOutboxStore, saga.OrderSagaName, cleanInterval, app.Logger)
	approvalCleaner := scheduler.NewCleaner("approval-outbox-cleaner", approvalOutboxStore, saga.OrderSagaName, cleanInterval, app.Logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return paymentResponses.Run(gCtx) })
	g.Go(func() error { return approvalResponses.Run(gCtx) })
	g.Go(func() error { return customerEvents.Run(gCtx) })
	g.Go(func() error { return paymentScheduler.Run(gCtx) })
	g.Go(func() error { return approvalScheduler.Run(gCtx) })
	g.Go(func() error { return paymentCleaner.Run(gCtx) })
	g.Go(func() error { return approvalCleaner.Run(gCtx) })
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error().Err(err).Msg("Server forced to shutdown")
			}
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		app.Logger.Error().Err(err).Msg("Service error")
	}
	app.Logger.Info().Msg("Order service exited")
}
