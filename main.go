package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/divanco-studio/backend/api"
	"github.com/divanco-studio/backend/config"
	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg := config.New()

	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetString(cfg, "DB_HOST", "localhost"),
		config.GetString(cfg, "DB_USER", "postgres"),
		config.GetString(cfg, "DB_PASSWORD", ""),
		config.GetString(cfg, "DB_NAME", "divanco"),
		config.GetString(cfg, "DB_PORT", "5432"),
		config.GetString(cfg, "DB_SSLMODE", "disable"),
	)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		fmt.Printf("Error enabling uuid-ossp extension: %v\n", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		fmt.Printf("Error running migrations: %v\n", err)
		os.Exit(1)
	}

	currentDB := database.New(db)

	storage, err := services.NewCloudinaryStorage(cfg)
	if err != nil {
		fmt.Printf("Error initializing media storage: %v\n", err)
		os.Exit(1)
	}

	notifier := buildNotifier(cfg, currentDB)

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, storage, notifier)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// buildNotifier wires the publish announcement channels. Either channel
// may be unconfigured; the notifier skips what it does not have.
func buildNotifier(cfg map[string]string, db database.Database) services.Notifier {
	email, err := services.NewResendClient(cfg)
	if err != nil {
		zlog.Warn().Err(err).Msg("email notifications disabled")
		email = nil
	}

	twitter, err := services.NewTwitterClient(cfg)
	if err != nil {
		zlog.Warn().Err(err).Msg("twitter notifications disabled")
		twitter = nil
	}

	siteURL := config.GetString(cfg, "SITE_URL", "https://divanco.com")

	return services.NewPublishNotifier(db.SubscriberRepo(), email, twitter, siteURL, zlog.Logger)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
