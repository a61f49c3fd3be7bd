package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"anteeq/moderator/internal/access"
	"anteeq/moderator/internal/api/handler"
	"anteeq/moderator/internal/keepalive"
	"anteeq/moderator/internal/punishment"
	"anteeq/moderator/internal/settings"
	"anteeq/moderator/internal/storage"
	"anteeq/moderator/internal/sweeper"
	"anteeq/moderator/internal/telegram"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=user password=password dbname=moderatordb port=5432 sslmode=disable"
	}

	db, err := storage.Connect(dsn)
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting moderation bot...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	policy := access.NewPolicy(s)
	importer := settings.NewImporter(s)

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set!")
	}
	creators := strings.Split(os.Getenv("CREATOR_USERNAMES"), ",")

	botService, err := telegram.NewBotService(botToken, s, policy, nil, importer, creators)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}
	// The ledger shields the bot's own account, so it needs the id the
	// token resolved to.
	botService.Ledger = punishment.NewLedger(s, botService.SelfID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw := sweeper.New(s, sweeper.NotifierFunc(s.PublishUnmuteEvent))

	go botService.Run()
	go botService.AnnounceUnmutes()
	go sw.Run(ctx)
	if selfURL := os.Getenv("SELF_URL"); selfURL != "" {
		go keepalive.New(selfURL).Run(ctx)
	}

	r := gin.Default()
	h := handler.NewHandler(s)

	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	server := &http.Server{
		Addr:           ":8080",
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
