package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Database (empty selects the in-memory store)
	DatabaseURL string

	// Server
	ServerPort string
	JWTSecret  string

	// Providers
	YouTubeAPIKey string
	OpenAIAPIKey  string

	// Orchestration
	MaxRunningJobs     int // jobs executing simultaneously across the process
	MaxModulesInFlight int // module tasks in flight within one job
	QueueCapacity      int // hard cap on queued submissions

	// Module settings file (YAML); optional
	ModulesConfigPath string

	// Delivery
	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string

	// Report export
	AWSRegion    string
	ReportBucket string // empty selects local-directory export
	ReportDir    string
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		YouTubeAPIKey:      os.Getenv("YOUTUBE_API_KEY"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		MaxRunningJobs:     getEnvInt("MAX_RUNNING_JOBS", 4),
		MaxModulesInFlight: getEnvInt("MAX_MODULES_IN_FLIGHT", 3),
		QueueCapacity:      getEnvInt("QUEUE_CAPACITY", 256),
		ModulesConfigPath:  getEnv("MODULES_CONFIG", "modules.yaml"),
		SMTPHost:           getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           getEnv("SMTP_PORT", "465"),
		SMTPFrom:           os.Getenv("SMTP_FROM"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		ReportBucket:       os.Getenv("REPORT_BUCKET"),
		ReportDir:          getEnv("REPORT_DIR", "reports"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
