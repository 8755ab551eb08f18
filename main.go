package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grievance-service/config"
	"grievance-service/internal/classifier"
	"grievance-service/internal/handler"
	"grievance-service/internal/messaging"
	"grievance-service/internal/reference"
	"grievance-service/internal/repository"
	"grievance-service/internal/service"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// components is everything main wires that depends on the store driver.
type components struct {
	grievances    service.GrievanceStore
	notifications service.NotificationReader
	waitlist      service.WaitlistStore
	ledger        messaging.AlertLedger
	publisher     messaging.EventPublisher
	stats         handler.OutboxStats
	closers       []func()
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func main() {
	log.Println("grievance service starting")

	cfg, err := config.LoadConfig("config/config.json")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sseHub := messaging.NewSSEHub()
	go sseHub.Run(ctx)

	var c *components
	switch cfg.Store.Driver {
	case config.DriverMemory:
		c = memoryComponents(cfg, sseHub)
	default:
		c = postgresComponents(ctx, cfg, sseHub)
	}
	defer c.close()

	directory := reference.NewDirectory(cfg.Reference.Officers, cfg.Reference.Cities)
	aiClient := classifier.NewClient(
		cfg.Classifier.Endpoint,
		cfg.Classifier.APIKey,
		cfg.Classifier.Model,
		cfg.Classifier.Timeout,
		cfg.Classifier.Retries,
	)

	scanner := messaging.NewAlertScanner(c.grievances, c.ledger, c.publisher, cfg.Alerts.ScanInterval)
	scanner.Start()
	defer scanner.Stop()

	grievanceService := service.NewGrievanceService(c.grievances, aiClient, directory, cfg.Jurisdiction)
	grievanceService.SetChangeNotifier(scanner)
	dashboardService := service.NewDashboardService(c.grievances, directory)
	waitlistService := service.NewWaitlistService(c.waitlist)
	notificationService := service.NewNotificationService(c.notifications, sseHub)

	r := handler.NewRouter(handler.Handlers{
		Grievance:    handler.NewGrievanceHandler(grievanceService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Waitlist:     handler.NewWaitlistHandler(waitlistService),
		Notification: handler.NewNotificationHandler(notificationService, cfg.JWT.Secret),
		Admin:        handler.NewAdminHandler(c.stats),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Printf("Grievance service listening on %s (store: %s)", srv.Addr, cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Grievance service stopped gracefully")
}

// memoryComponents runs everything in process: events go straight from the
// store to the notification consumer.
func memoryComponents(cfg *config.Config, sseHub *messaging.SSEHub) *components {
	store := repository.NewMemoryGrievanceStore()
	notifications := repository.NewMemoryNotificationStore()

	consumer := messaging.NewNotificationConsumer(nil, notifications, sseHub)
	bus := messaging.NewLocalBus(consumer)
	store.SetSink(bus)

	log.Println("Using in-memory store")
	return &components{
		grievances:    store,
		notifications: notifications,
		waitlist:      repository.NewMemoryWaitlist(),
		ledger:        repository.NewMemoryAlertLedger(cfg.Alerts.DedupTTL),
		publisher:     bus,
	}
}

func postgresComponents(ctx context.Context, cfg *config.Config, sseHub *messaging.SSEHub) *components {
	c := &components{}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	c.closers = append(c.closers, func() { db.Close() })

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	log.Println("Connected to database")

	rmq, err := messaging.NewRabbitMQ(
		cfg.RabbitMQ.Host,
		cfg.RabbitMQ.Port,
		cfg.RabbitMQ.User,
		cfg.RabbitMQ.Password,
	)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	c.closers = append(c.closers, rmq.Close)
	log.Println("Connected to RabbitMQ")

	outboxRepo := repository.NewOutboxRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	outboxWorker := messaging.NewOutboxWorker(outboxRepo, rmq)
	outboxWorker.Start()
	c.closers = append(c.closers, outboxWorker.Stop)

	consumer := messaging.NewNotificationConsumer(rmq, notificationRepo, sseHub)
	consumer.Start()
	c.closers = append(c.closers, consumer.Stop)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable at %s: %v", cfg.Redis.Addr, err)
		}
		c.closers = append(c.closers, func() { rdb.Close() })
		c.ledger = repository.NewRedisAlertLedger(rdb, cfg.Alerts.DedupTTL)
		log.Println("Using Redis alert ledger")
	} else {
		c.ledger = repository.NewMemoryAlertLedger(cfg.Alerts.DedupTTL)
	}

	c.grievances = repository.NewGrievanceRepository(db, outboxRepo)
	c.notifications = notificationRepo
	c.waitlist = repository.NewWaitlistRepository(db)
	c.publisher = outboxRepo
	c.stats = outboxWorker
	return c
}
