package storage

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/models"
)

// Storage is the persistence boundary of the moderation core. The durable
// record types behind it are Chat, AdminRank, Nick, Warning, Mute, Ban,
// PolicyEntry and Award, all keyed per chat.
type Storage interface {
	// Chats
	EnsureChat(chatID int64) (*models.Chat, error)
	GetChat(chatID int64) (*models.Chat, error)
	DeleteChat(chatID int64) error
	SetCreator(chatID int64, userID *int64) error
	GetCreator(chatID int64) *int64
	SetWelcomeMessage(chatID int64, text string) error
	SetRules(chatID int64, text string) error
	SetLinkPostingRank(chatID int64, rank int) error
	SetAwardGivingRank(chatID int64, rank int) error
	SetMaxWarns(chatID int64, limit int) error
	SetProfanityFilter(chatID int64, enabled bool) error
	SetProfanityWords(chatID int64, words []string) error
	SetChatCode(chatID int64, code string) error
	FindChatByCode(code string) (*models.Chat, error)
	ImportChatSettings(targetChatID, sourceChatID int64) error

	// Access table
	GetAccessControl(chatID int64) (map[string]int, error)
	SetSectionRank(chatID int64, section string, rank int) error

	// Ranks
	SetRank(chatID, userID int64, rank int) error
	GetRank(chatID, userID int64) int
	GetAllAdmins(chatID int64) ([]models.AdminRank, error)

	// Nicks
	SetNick(chatID, userID int64, nick string) error
	GetNick(chatID, userID int64) (*string, error)
	RemoveNick(chatID, userID int64) (bool, error)
	GetAllNicks(chatID int64) ([]models.Nick, error)

	// Warnings
	AddWarn(warn *models.Warning) error
	GetWarns(chatID, userID int64) ([]models.Warning, error)
	CountWarns(chatID, userID int64) (int, error)
	LastWarn(chatID, userID int64) (*models.Warning, error)
	DeleteWarn(id uint) error
	DeleteAllWarns(chatID, userID int64) error

	// Mutes
	UpsertMute(mute *models.Mute) error
	GetMute(chatID, userID int64) (*models.Mute, error)
	DeleteMute(chatID, userID int64) error
	DeleteMuteIfUnmuteAt(chatID, userID int64, unmuteTime time.Time) (bool, error)
	ListExpiredMutes(now time.Time) ([]models.Mute, error)

	// Bans
	UpsertBan(ban *models.Ban) error
	DeleteBan(chatID, userID int64) error
	IsBanned(chatID, userID int64) (bool, error)

	// Awards
	AddAward(award *models.Award) error
	GetAwards(chatID, userID int64) ([]models.Award, error)
	ClearAwards(chatID, userID int64) error

	// Events
	PublishUnmuteEvent(ctx context.Context, event models.UnmuteEvent) error
}

// Service implements Storage over PostgreSQL and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// Connect opens the PostgreSQL connection, retrying a bounded number of
// times with backoff. Only the connect step is retried; individual writes
// never are.
func Connect(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= config.ConnectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			return db, nil
		}
		log.Printf("ERROR: PostgreSQL connect attempt %d/%d failed: %v", attempt, config.ConnectAttempts, err)
		if attempt < config.ConnectAttempts {
			time.Sleep(config.ConnectBackoff * time.Duration(attempt))
		}
	}
	return nil, err
}

// Migrate creates or updates the tables for every durable record type.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Chat{},
		&models.AdminRank{},
		&models.Nick{},
		&models.Warning{},
		&models.Mute{},
		&models.Ban{},
		&models.PolicyEntry{},
		&models.Award{},
	)
}
