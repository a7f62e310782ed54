/**
 * @description
 * This is the main entry point for the sync-service. It initializes all
 * components of the service: configuration, the database connection pool, the
 * provider API clients (Plaid, Teller), the AI backend client, the RabbitMQ
 * producer, the optional Redis rate limiter, the read cache, the core
 * application service, and the HTTP server. It wires everything together and
 * starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: Optional .env loading for local development.
 * - internal/api, internal/app, internal/cache, internal/config, internal/store: Internal packages.
 * - pkg/aiclient, pkg/plaidclient, pkg/tellerclient, pkg/rabbitmq: External service clients.
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
	"github.com/monetra/sync-service/internal/api"
	"github.com/monetra/sync-service/internal/app"
	"github.com/monetra/sync-service/internal/cache"
	"github.com/monetra/sync-service/internal/config"
	"github.com/monetra/sync-service/internal/store"
	"github.com/monetra/sync-service/pkg/aiclient"
	"github.com/monetra/sync-service/pkg/plaidclient"
	rmrabbit "github.com/monetra/sync-service/pkg/rabbitmq"
	"github.com/monetra/sync-service/pkg/tellerclient"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting sync-service\" port=%s", cfg.ServerPort)

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

	// Initialize the RabbitMQ producer to publish sync events. Publishing is
	// best effort; a missing broker degrades to the no-op fallback.
	var rabbitProducer rmrabbit.Publisher
	producer, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		rabbitProducer = &rmrabbit.EventProducerFallback{}
	} else {
		defer producer.Close()
		rabbitProducer = producer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Initialize the provider clients. A provider without credentials is
	// simply not registered; credentials stored for it will fail per-item
	// inside sync rather than blocking other providers.
	var providerClients []app.ProviderClient
	var plaidLinker app.PlaidLinker
	if strings.TrimSpace(cfg.PlaidClientID) != "" && strings.TrimSpace(cfg.PlaidSecret) != "" {
		plaidClient := plaidclient.NewClient(cfg.PlaidBaseURL, cfg.PlaidClientID, cfg.PlaidSecret)
		providerClients = append(providerClients, plaidClient)
		plaidLinker = plaidClient
	} else {
		log.Println("level=warn component=bootstrap msg=\"plaid credentials missing; plaid sync disabled\"")
	}
	providerClients = append(providerClients, tellerclient.NewClient(cfg.TellerBaseURL))

	// The AI backend is optional; without credentials the categorization
	// engine goes straight to the keyword heuristic.
	aiClient := aiclient.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	if !aiClient.IsConfigured() {
		log.Println("level=warn component=bootstrap msg=\"ai backend not configured; categorization will use heuristics only\"")
	}

	// Optional Redis-backed rate limiting for manual sync requests.
	var rateLimiter *app.RedisSyncRateLimiter
	if cfg.SyncRateLimitPerHour > 0 {
		if cfg.RedisURL == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; sync rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; sync rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient := redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; sync rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
				} else {
					defer redisClient.Close()
					rateLimiter = app.NewRedisSyncRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Initialize the data access layer, the read cache, and the core service.
	repository := store.NewPostgresRepository(dbpool)
	readCache := cache.New()
	categorizer := app.NewCategorizationEngine(aiClient)
	syncService := app.NewService(repository, providerClients, plaidLinker, categorizer, rabbitProducer, readCache)

	// Initialize the API handlers and router.
	syncHandlers := api.NewSyncHandlers(syncService, rateLimiter, cfg.SyncRateLimitPerHour)
	router := chi.NewRouter()
	router.Mount("/", api.SyncRoutes(syncHandlers, cfg.JWKSURL))

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
