package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"anteeq/moderator/internal/access"
	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/models"
	"anteeq/moderator/internal/settings"
	"anteeq/moderator/internal/storage"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
		)
	}
	db, err := storage.Connect(dsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	s := storage.NewStorageService(db, nil) // No redis needed for the CLI

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "set-rank":
		if len(os.Args) != 5 {
			fmt.Println("Usage: admin set-rank <chat_id> <user_id> <rank>")
			os.Exit(1)
		}
		chatID, userID := parseChatUser(os.Args[2], os.Args[3])
		rank, err := strconv.Atoi(os.Args[4])
		if err != nil || access.ValidateRank(rank) != nil {
			fmt.Printf("Invalid rank. Provide an integer %d..%d.\n", config.MinRank, config.MaxRank)
			os.Exit(1)
		}
		if err := s.SetRank(chatID, userID, rank); err != nil {
			log.Fatalf("Error setting rank: %v", err)
		}
		fmt.Printf("User %d in chat %d now has rank %d.\n", userID, chatID, rank)

	case "ban":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin ban <chat_id> <user_id> [reason]")
			os.Exit(1)
		}
		chatID, userID := parseChatUser(os.Args[2], os.Args[3])
		reason := config.NoReason
		if len(os.Args) > 4 {
			reason = os.Args[4]
		}
		if err := s.UpsertBan(&models.Ban{ChatID: chatID, UserID: userID, Reason: reason}); err != nil {
			log.Fatalf("Error banning user: %v", err)
		}
		fmt.Printf("User %d has been banned in chat %d.\n", userID, chatID)

	case "unban":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin unban <chat_id> <user_id>")
			os.Exit(1)
		}
		chatID, userID := parseChatUser(os.Args[2], os.Args[3])
		if err := s.DeleteBan(chatID, userID); err != nil {
			log.Fatalf("Error unbanning user: %v", err)
		}
		fmt.Printf("User %d has been unbanned in chat %d.\n", userID, chatID)

	case "warns":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin warns <chat_id> <user_id>")
			os.Exit(1)
		}
		chatID, userID := parseChatUser(os.Args[2], os.Args[3])
		warns, err := s.GetWarns(chatID, userID)
		if err != nil {
			log.Fatalf("Error listing warnings: %v", err)
		}
		if len(warns) == 0 {
			fmt.Println("No warnings.")
			return
		}
		for i, warn := range warns {
			fmt.Printf("%d. %s from %d: %s\n", i+1, warn.CreatedAt.Format("2006-01-02 15:04"), warn.FromUserID, warn.Reason)
		}

	case "clear-warns":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin clear-warns <chat_id> <user_id>")
			os.Exit(1)
		}
		chatID, userID := parseChatUser(os.Args[2], os.Args[3])
		if err := s.DeleteAllWarns(chatID, userID); err != nil {
			log.Fatalf("Error clearing warnings: %v", err)
		}
		if err := s.DeleteBan(chatID, userID); err != nil {
			log.Fatalf("Error lifting ban: %v", err)
		}
		fmt.Printf("Warnings of user %d in chat %d cleared.\n", userID, chatID)

	case "set-max-warns":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-max-warns <chat_id> <limit>")
			os.Exit(1)
		}
		chatID := parseID(os.Args[2])
		limit, err := strconv.Atoi(os.Args[3])
		if err != nil || limit < 1 {
			fmt.Println("Invalid limit. Provide a positive integer.")
			os.Exit(1)
		}
		if err := s.SetMaxWarns(chatID, limit); err != nil {
			log.Fatalf("Error setting warning limit: %v", err)
		}
		fmt.Printf("Chat %d now bans at %d warnings.\n", chatID, limit)

	case "set-link-rank":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-link-rank <chat_id> <rank>")
			os.Exit(1)
		}
		chatID := parseID(os.Args[2])
		rank, err := strconv.Atoi(os.Args[3])
		if err != nil || access.ValidateRank(rank) != nil {
			fmt.Printf("Invalid rank. Provide an integer %d..%d.\n", config.MinRank, config.MaxRank)
			os.Exit(1)
		}
		if err := s.SetLinkPostingRank(chatID, rank); err != nil {
			log.Fatalf("Error setting link rank: %v", err)
		}
		fmt.Printf("Chat %d now requires rank %d for links.\n", chatID, rank)

	case "set-award-rank":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-award-rank <chat_id> <rank>")
			os.Exit(1)
		}
		chatID := parseID(os.Args[2])
		rank, err := strconv.Atoi(os.Args[3])
		if err != nil || access.ValidateRank(rank) != nil {
			fmt.Printf("Invalid rank. Provide an integer %d..%d.\n", config.MinRank, config.MaxRank)
			os.Exit(1)
		}
		if err := s.SetAwardGivingRank(chatID, rank); err != nil {
			log.Fatalf("Error setting award rank: %v", err)
		}
		fmt.Printf("Chat %d now requires rank %d for awards.\n", chatID, rank)

	case "profanity":
		if len(os.Args) != 4 || (os.Args[3] != "on" && os.Args[3] != "off") {
			fmt.Println("Usage: admin profanity <chat_id> on|off")
			os.Exit(1)
		}
		chatID := parseID(os.Args[2])
		if err := s.SetProfanityFilter(chatID, os.Args[3] == "on"); err != nil {
			log.Fatalf("Error toggling profanity filter: %v", err)
		}
		fmt.Printf("Profanity filter for chat %d: %s.\n", chatID, os.Args[3])

	case "profanity-words":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin profanity-words <chat_id> [word ...]")
			os.Exit(1)
		}
		chatID := parseID(os.Args[2])
		if err := s.SetProfanityWords(chatID, os.Args[3:]); err != nil {
			log.Fatalf("Error setting profanity words: %v", err)
		}
		fmt.Printf("Chat %d now carries %d extra filtered words.\n", chatID, len(os.Args)-3)

	case "chat-code":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin chat-code <chat_id>")
			os.Exit(1)
		}
		chatID := parseID(os.Args[2])
		code, err := settings.NewImporter(s).ChatCode(chatID)
		if err != nil {
			log.Fatalf("Error getting chat code: %v", err)
		}
		fmt.Printf("Chat %d code: %s\n", chatID, code)

	case "import":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin import <target_chat_id> <code>")
			os.Exit(1)
		}
		chatID := parseID(os.Args[2])
		if err := settings.NewImporter(s).ImportByCode(chatID, os.Args[3]); err != nil {
			log.Fatalf("Error importing settings: %v", err)
		}
		fmt.Printf("Settings imported into chat %d.\n", chatID)

	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("Commands: set-rank, ban, unban, warns, clear-warns, set-max-warns,")
	fmt.Println("          set-link-rank, set-award-rank, profanity, profanity-words,")
	fmt.Println("          chat-code, import")
	os.Exit(1)
}

func parseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Printf("Invalid id %q. Provide an integer.\n", arg)
		os.Exit(1)
	}
	return id
}

func parseChatUser(chatArg, userArg string) (int64, int64) {
	return parseID(chatArg), parseID(userArg)
}
