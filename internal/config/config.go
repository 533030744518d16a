package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	JWTSecret     string
	AdminPassword string

	// StorageBackend selects the durable store: "file" or "postgres".
	StorageBackend string
	DataDir        string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RefreshInterval time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	NotifyFrom   string

	TelegramToken string
	TelegramChats map[string]int64
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "supersecretkey"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin@123"),

		StorageBackend: getEnv("STORAGE_BACKEND", "file"),
		DataDir:        getEnv("DATA_DIR", "./data"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "compass_user"),
		DBPassword: getEnv("DB_PASSWORD", "compass_pass"),
		DBName:     getEnv("DB_NAME", "compass_db"),

		RefreshInterval: time.Duration(getEnvInt("REFRESH_INTERVAL_SECONDS", 30)) * time.Second,

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		NotifyFrom:   getEnv("NOTIFY_FROM", "noreply@taskcompass.com"),

		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChats: parseChatMap(getEnv("TELEGRAM_CHATS", "")),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("⚠️  %s is not a number, using default %d", key, defaultVal)
	}
	return defaultVal
}

// parseChatMap reads "uid:chatID,uid:chatID" pairs.
func parseChatMap(raw string) map[string]int64 {
	chats := make(map[string]int64)
	for _, pair := range strings.Split(raw, ",") {
		uid, id, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			continue
		}
		chatID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			log.Printf("⚠️  Invalid telegram chat id for %s: %v", uid, err)
			continue
		}
		chats[uid] = chatID
	}
	return chats
}
