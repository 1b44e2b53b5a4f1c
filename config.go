package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fasaldoc/gateway"
	"fasaldoc/photos"
)

type Config struct {
	MongoURI  string
	MongoDB   string
	JWTSecret string
	Port      string

	ModelProvider string // groq | gemini
	GroqAPIKey    string
	GroqModel     string
	GeminiAPIKey  string
	GeminiModel   string
	ModelTimeout  time.Duration

	SQLitePath    string
	Photos        photos.Config
	DefaultRegion string
	LogLevel      string
}

// mustConfig reads .env (if any) and then the environment.
func mustConfig() Config {
	_ = godotenv.Load()

	return Config{
		MongoURI:  getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getenv("MONGO_DB", "fasaldoc"),
		JWTSecret: getenv("JWT_SECRET", "change_me"),
		Port:      getenv("PORT", "8080"),

		ModelProvider: strings.ToLower(getenv("MODEL_PROVIDER", "groq")),
		GroqAPIKey:    getenv("GROQ_API_KEY", ""),
		GroqModel:     getenv("GROQ_MODEL", gateway.DefaultGroqModel),
		GeminiAPIKey:  getenv("GEMINI_API_KEY", ""),
		GeminiModel:   getenv("GEMINI_MODEL", gateway.DefaultGeminiModel),
		ModelTimeout:  getduration("MODEL_TIMEOUT", 60*time.Second),

		SQLitePath: getenv("SQLITE_PATH", "fasaldoc.db"),
		Photos: photos.Config{
			Endpoint:  getenv("PHOTO_S3_ENDPOINT", ""),
			Region:    getenv("PHOTO_S3_REGION", ""),
			AccessKey: getenv("PHOTO_S3_ACCESS_KEY", ""),
			SecretKey: getenv("PHOTO_S3_SECRET_KEY", ""),
			Bucket:    getenv("PHOTO_S3_BUCKET", "fasaldoc-photos"),
			UseSSL:    getbool("PHOTO_S3_USE_SSL", false),
		},
		DefaultRegion: getenv("DEFAULT_REGION", "Maharashtra"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getduration accepts Go durations ("90s") or plain seconds ("90").
func getduration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func getbool(k string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}
