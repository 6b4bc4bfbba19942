package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// maxAccounts is the highest IMAP_ACCOUNT<n>_ prefix scanned at startup.
const maxAccounts = 10

// Account holds the connection settings for one watched mailbox.
type Account struct {
	ID       string
	Host     string
	Port     int
	UseTLS   bool
	Username string
	Password string
}

// Addr returns the host:port dial address for the account.
func (a Account) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// Complete reports whether the account has enough settings to connect.
// Incomplete accounts are skipped at startup, they never fail the process.
func (a Account) Complete() bool {
	return a.Host != "" && a.Username != "" && a.Password != ""
}

type Config struct {
	Environment          string
	Port                 string
	WatchedFolder        string
	Accounts             []Account
	ElasticURL           string
	GroqAPIKey           string
	GroqModel            string
	SlackWebhookURL      string
	InterestedWebhookURL string
}

func NewConfig() (*Config, error) {
	env := os.Getenv("ONEBOX_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	config := &Config{
		Environment:          env,
		Port:                 getEnvOrDefault("PORT", "8080"),
		WatchedFolder:        getEnvOrDefault("ONEBOX_WATCHED_FOLDER", "INBOX"),
		Accounts:             loadAccounts(),
		ElasticURL:           getEnvOrDefault("ELASTIC_URL", "http://localhost:9200"),
		GroqAPIKey:           os.Getenv("GROQ_API_KEY"),
		GroqModel:            getEnvOrDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		SlackWebhookURL:      os.Getenv("SLACK_WEBHOOK_URL"),
		InterestedWebhookURL: os.Getenv("INTERESTED_WEBHOOK_URL"),
	}

	return config, nil
}

// loadAccounts scans IMAP_ACCOUNT1_* through IMAP_ACCOUNT10_* env vars.
// Prefixes with no HOST set are skipped, so accounts do not have to be
// numbered contiguously.
func loadAccounts() []Account {
	var accounts []Account

	for i := 1; i <= maxAccounts; i++ {
		prefix := fmt.Sprintf("IMAP_ACCOUNT%d_", i)
		host := os.Getenv(prefix + "HOST")
		if host == "" {
			continue
		}

		accounts = append(accounts, Account{
			ID:       fmt.Sprintf("account%d", i),
			Host:     host,
			Port:     getEnvIntOrDefault(prefix+"PORT", 993),
			UseTLS:   getEnvOrDefault(prefix+"SECURE", "true") == "true",
			Username: os.Getenv(prefix + "USER"),
			Password: os.Getenv(prefix + "PASS"),
		})
	}

	return accounts
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
