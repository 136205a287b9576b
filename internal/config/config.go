package config

import (
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	HTTPAddr string

	SQLiteDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ChatContextWindowSize int

	// AI providers
	OllamaBaseURL    string
	OllamaModel      string
	HuggingFaceBase  string
	HuggingFaceToken string
	HuggingFaceModel string

	// Steam Web API
	SteamAPIKey  string
	SteamBaseURL string

	// rabbitMQ (async chat jobs; optional)
	RabbitURL   string
	RabbitQueue string
}

// Load reads configuration from the environment. Missing provider tokens are
// allowed: the affected provider fails at call time, never at startup.
func Load() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":5000"
	}

	dsn := os.Getenv("SQLITE_DSN")
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	windowSize := 20
	if v := os.Getenv("CHAT_CONTEXT_WINDOW_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			windowSize = n
		}
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}

	ollamaModel := os.Getenv("OLLAMA_MODEL")
	if ollamaModel == "" {
		ollamaModel = "llama3.2"
	}

	hfBase := os.Getenv("HF_BASE_URL")
	if hfBase == "" {
		hfBase = "https://router.huggingface.co"
	}
	hfModel := os.Getenv("HF_MODEL")
	if hfModel == "" {
		hfModel = "deepseek-ai/DeepSeek-R1-0528"
	}

	steamBase := os.Getenv("STEAM_BASE_URL")
	if steamBase == "" {
		steamBase = "https://api.steampowered.com"
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "chat_jobs"
	}

	return Config{
		HTTPAddr:  addr,
		SQLiteDSN: dsn,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		ChatContextWindowSize: windowSize,

		OllamaBaseURL:    ollamaBaseURL,
		OllamaModel:      ollamaModel,
		HuggingFaceBase:  hfBase,
		HuggingFaceToken: os.Getenv("HF_TOKEN"),
		HuggingFaceModel: hfModel,

		SteamAPIKey:  os.Getenv("STEAM_API_KEY"),
		SteamBaseURL: steamBase,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,
	}
}
