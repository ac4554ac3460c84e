package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Research ResearchConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	SessionLogFilePath string
	CorsAllowedOrigins string
	SiteDir            string
	OutputDir          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Tavily       string
	GoogleGemini string
	HuggingFace  string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "gemini", "huggingface"
	SmartLLMModel     string // report writing
	FastLLMModel      string // sub-query generation, agent selection
}

// ResearchConfig holds the server-wide defaults for a research run. Each
// run may still override parts of it through the start command payload
// and an optional JSON config file.
type ResearchConfig struct {
	Retriever                string
	MaxSearchResultsPerQuery int
	MaxSubQueries            int
	SmartTokenMax            int
	PromptTokenLimit         int
	TotalWords               int
	Temperature              float64
	UserAgent                string
	ScrapeTimeoutSeconds     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			SessionLogFilePath: getEnv("SESSION_LOG_FILE_PATH", "research_sessions.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			SiteDir:            getEnv("SITE_DIR", "./frontend"),
			OutputDir:          getEnv("OUTPUT_DIR", "outputs"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Tavily:       getEnv("TAVILY_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HF_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			SmartLLMModel:     getEnv("SMART_LLM_MODEL", "llama3"),
			FastLLMModel:      getEnv("FAST_LLM_MODEL", "llama3"),
		},
		Research: ResearchConfig{
			Retriever:                getEnv("RETRIEVER", "tavily"),
			MaxSearchResultsPerQuery: getEnvAsInt("MAX_SEARCH_RESULTS_PER_QUERY", 5),
			MaxSubQueries:            getEnvAsInt("MAX_SUB_QUERIES", 3),
			SmartTokenMax:            getEnvAsInt("SMART_TOKEN_MAX", 16385),
			PromptTokenLimit:         getEnvAsInt("PROMPT_TOKEN_LIMIT", 10000),
			TotalWords:               getEnvAsInt("TOTAL_WORDS", 1000),
			Temperature:              getEnvAsFloat("TEMPERATURE", 0.55),
			UserAgent:                getEnv("USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			ScrapeTimeoutSeconds:     getEnvAsInt("SCRAPE_TIMEOUT_SECONDS", 20),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
