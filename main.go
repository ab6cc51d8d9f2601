package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/config"
	"github.com/kendall-kelly/legacy-storefront-api/controllers"
	"github.com/kendall-kelly/legacy-storefront-api/models"
	"github.com/kendall-kelly/legacy-storefront-api/services"
	"gorm.io/gorm"
)

const eventInboxSize = 256

func main() {
	log.Println("Starting Legacy Storefront API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode())

	db, err := config.ConnectDatabase(cfg.DatabaseURL, cfg.GormLogLevel())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, cleanup, err := buildDependencies(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           controllers.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server is running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// buildDependencies wires the optional adapters. S3, Kafka and Redis are each
// enabled only when configured. cleanup flushes and closes whatever was opened.
func buildDependencies(ctx context.Context, cfg *config.Config, db *gorm.DB) (*controllers.Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var geocoder services.Geocoder = services.NewNominatimGeocoder(cfg)
	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		geocoder = services.NewCachingGeocoder(geocoder, client, cfg.GeocodeCacheTTL)
		log.Println("[Geocoder] Redis cache enabled")
	}

	var archive services.EventArchive = services.NopEventArchive{}
	if cfg.ArchiveEnabled() {
		s3Archive, err := services.NewS3EventArchive(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		archive = s3Archive
		log.Printf("[Archive] Storing webhook payloads in s3://%s", cfg.AWSS3Bucket)
	}

	var events services.EventPublisher = services.NopEventPublisher{}
	if cfg.EventsEnabled() {
		publisher := services.NewKafkaEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, eventInboxSize)
		publisher.Start()
		closers = append(closers, func() { _ = publisher.Close() })
		events = publisher
		log.Printf("[Events] Publishing to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}

	return controllers.NewDependencies(cfg, db, geocoder, archive, events), cleanup, nil
}
