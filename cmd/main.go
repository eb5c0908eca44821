/**
 * @description
 * This is the main entry point for the wallet-service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, external API clients, message brokers, repositories, the core
 * application service, the reminder scheduler, and the HTTP server. It wires
 * everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/robfig/cron/v3: Reminder sweep scheduling.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/currencyclient, pkg/extractclient, pkg/rabbitmq: External collaborator clients.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/cashtide/wallet-service/internal/api"
	"github.com/cashtide/wallet-service/internal/app"
	"github.com/cashtide/wallet-service/internal/config"
	"github.com/cashtide/wallet-service/internal/store"
	"github.com/cashtide/wallet-service/pkg/currencyclient"
	"github.com/cashtide/wallet-service/pkg/extractclient"
	rmrabbit "github.com/cashtide/wallet-service/pkg/rabbitmq"
)

func main() {
	// Load the optional .env file before viper reads the environment.
	if err := godotenv.Load(); err == nil {
		log.Println("level=info component=bootstrap msg=\".env loaded\"")
	}

	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting wallet-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer for notification events. The service
	// only publishes; the notification consumer owns queues and bindings.
	var publisher rmrabbit.Publisher
	rabbitProducer, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		publisher = &rmrabbit.EventProducerFallback{}
	} else {
		publisher = rabbitProducer
	}
	defer publisher.Close()

	// Initialize the extraction model client. Without it captures are
	// rejected but the rest of the service keeps working.
	var extractor app.Extractor
	if strings.TrimSpace(cfg.ExtractAPIBaseURL) == "" || strings.TrimSpace(cfg.ExtractAPIKey) == "" {
		log.Println("level=warn component=bootstrap msg=\"extraction client not configured; captures disabled\" env=EXTRACT_API_BASE_URL")
	} else {
		extractor = extractclient.NewClient(cfg.ExtractAPIBaseURL, cfg.ExtractAPIKey, cfg.ExtractModel)
	}

	// Initialize the exchange-rate client for wallet summaries.
	currencyClient := currencyclient.NewClient(cfg.CurrencyAPIBaseURL)

	// Redis backs the confirm lock. Optional: without it the conditional
	// status update alone prevents double commits.
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; confirm lock disabled\" err=%v", parseErr)
		} else {
			redisClient = redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelPing()
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; confirm lock disabled\" err=%v", pingErr)
				redisClient.Close()
				redisClient = nil
			} else {
				defer redisClient.Close()
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	walletService := app.NewService(repository, extractor, currencyClient, publisher)
	walletService.SetContentLimits(cfg.ContentCharLimit, cfg.ExcerptCharLimit)
	if redisClient != nil {
		walletService.SetConfirmLock(app.NewRedisConfirmLock(redisClient))
	}

	// Schedule the daily reminder sweeps.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.ReminderCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := walletService.SweepSubscriptionRenewals(ctx); err != nil {
			log.Printf("level=error component=scheduler msg=\"subscription sweep failed\" err=%v", err)
		}
		if err := walletService.SweepFreeTrialExpiries(ctx); err != nil {
			log.Printf("level=error component=scheduler msg=\"free trial sweep failed\" err=%v", err)
		}
		if err := walletService.SweepStaleIntentions(ctx); err != nil {
			log.Printf("level=error component=scheduler msg=\"stale intention sweep failed\" err=%v", err)
		}
	})
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"invalid reminder cron spec\" spec=%q err=%v", cfg.ReminderCronSpec, err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Printf("level=info component=scheduler msg=\"reminder sweeps scheduled\" spec=%q", cfg.ReminderCronSpec)

	// Initialize the API handlers.
	walletHandlers := api.NewWalletHandlers(walletService)

	// Set up the HTTP router and define the API routes.
	router := chi.NewRouter()
	router.Mount("/api/v1", api.WalletRoutes(walletHandlers, cfg.JWTSecret))

	// Start the HTTP server.
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
