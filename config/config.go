package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBDriver  string // postgres, mysql or sqlite
	DBName    string
	JWTKey    string
	SaltRound int

	MaxQuestionsPerQuiz   int
	MaxAnswersPerQuestion int

	// ClampQuizScore caps the aggregate quiz score to [0,1]. Off by default
	// so heavy wrong-answer penalties can drive the total negative.
	ClampQuizScore bool

	// AllowEmptyAttempt lets a user record an attempt without answering
	// any question. Scoring such an attempt always fails.
	AllowEmptyAttempt bool

	ScoreCacheTTLMin int
	CachePurgeSpec   string

	SendgridApiKey string
	EmailSender    string

	WebhookTimeoutSec int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		DBDriver:  getEnv("DB_DRIVER", "postgres"),
		DBName:    getEnv("DB_NAME", "quizzer"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		MaxQuestionsPerQuiz:   getEnvInt("MAX_QUESTIONS_PER_QUIZ", 10),
		MaxAnswersPerQuestion: getEnvInt("MAX_ANSWERS_PER_QUESTION", 5),

		ClampQuizScore:    getEnvBool("CLAMP_QUIZ_SCORE", false),
		AllowEmptyAttempt: getEnvBool("ALLOW_EMPTY_ATTEMPT", false),

		ScoreCacheTTLMin: getEnvInt("SCORE_CACHE_TTL_MIN", 0),
		CachePurgeSpec:   getEnv("CACHE_PURGE_SPEC", "@every 15m"),

		SendgridApiKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@quizzer.local"),

		WebhookTimeoutSec: getEnvInt("WEBHOOK_TIMEOUT_SEC", 10),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendgridApiKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Outgoing email is disabled.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
