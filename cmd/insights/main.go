package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/onlyfits/insights/internal/api"
	"github.com/onlyfits/insights/internal/genai"
	"github.com/onlyfits/insights/internal/insight"
	"github.com/onlyfits/insights/internal/lockfile"
	"github.com/onlyfits/insights/internal/nudge"
	"github.com/onlyfits/insights/internal/store"
	"github.com/onlyfits/insights/internal/util"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	// Load the .env file before logger setup so DEBUG applies
	envErr := godotenv.Load()

	// Initialize structured logger
	initializeLogger(util.ParseBoolEnv("DEBUG", false))
	if envErr != nil {
		slog.Debug("failed to load .env file", "error", envErr)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Guard SQLite database files against concurrent instances
	if *flags.dbDSN != "" && store.DetectDSNType(*flags.dbDSN) != "postgres" {
		lock, err := lockfile.AcquireLock(filepath.Dir(*flags.dbDSN))
		if err != nil {
			slog.Error("Failed to acquire database directory lock", "error", err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	// Build module options
	genaiOpts := buildGenAIOptions(flags, config)
	insightOpts := buildInsightOptions(config)
	storeOpts := buildStoreOptions(flags)
	nudgeOpts := buildNudgeOptions(config)
	apiOpts := buildAPIOptions(flags)

	// Start the service
	slog.Info("Bootstrapping insights service with configured modules", "version", Version)
	slog.Debug("Module options counts", "genai", len(genaiOpts), "insight", len(insightOpts), "store", len(storeOpts), "nudge", len(nudgeOpts), "api", len(apiOpts))
	if err := api.Run(*flags.provider, genaiOpts, insightOpts, storeOpts, nudgeOpts, apiOpts); err != nil {
		slog.Error("insights service failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("insights service exited successfully")
}

// Config holds environment configuration
type Config struct {
	Provider          string
	OpenAIKey         string
	GoogleKey         string
	Model             string
	MaxTokens         int
	GenerationTimeout time.Duration
	DatabaseURL       string
	APIAddr           string
	TwilioSID         string
	TwilioToken       string
	TwilioFrom        string
}

// Flags holds command line flag values
type Flags struct {
	provider  *string
	openaiKey *string
	googleKey *string
	model     *string
	dbDSN     *string
	apiAddr   *string
}

// initializeLogger sets up structured logging
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables
func loadEnvironmentConfig() Config {
	config := Config{
		Provider:          os.Getenv("GENAI_PROVIDER"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		GoogleKey:         os.Getenv("GOOGLE_API_KEY"),
		Model:             os.Getenv("GENAI_MODEL"),
		MaxTokens:         util.ParseIntEnv("GENAI_MAX_TOKENS", 0),
		GenerationTimeout: util.ParseDurationEnv("GENAI_TIMEOUT", insight.DefaultGenerationTimeout),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		APIAddr:           os.Getenv("API_ADDR"),
		TwilioSID:         os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioToken:       os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:        os.Getenv("TWILIO_FROM_NUMBER"),
	}

	if config.Provider == "" {
		config.Provider = api.ProviderOpenAI
	}

	slog.Debug("environment variables loaded",
		"GENAI_PROVIDER", config.Provider,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"GOOGLE_API_KEY_SET", config.GoogleKey != "",
		"GENAI_MODEL", config.Model,
		"GENAI_MAX_TOKENS", config.MaxTokens,
		"GENAI_TIMEOUT", config.GenerationTimeout,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"API_ADDR", config.APIAddr,
		"TWILIO_CONFIGURED", config.TwilioSID != "" && config.TwilioToken != "" && config.TwilioFrom != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		provider:  flag.String("provider", config.Provider, "generation provider, openai or gemini (overrides $GENAI_PROVIDER)"),
		openaiKey: flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		googleKey: flag.String("google-api-key", config.GoogleKey, "Google API key for Gemini (overrides $GOOGLE_API_KEY)"),
		model:     flag.String("model", config.Model, "generation model name (overrides $GENAI_MODEL)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "database DSN for the insight history store (overrides $DATABASE_URL)"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"provider", *flags.provider,
		"openaiKeySet", *flags.openaiKey != "",
		"googleKeySet", *flags.googleKey != "",
		"model", *flags.model,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr)

	return flags
}

// buildGenAIOptions constructs generation client configuration options
func buildGenAIOptions(flags Flags, config Config) []genai.Option {
	var genaiOpts []genai.Option
	switch *flags.provider {
	case api.ProviderGemini:
		if *flags.googleKey != "" {
			genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.googleKey))
		}
	default:
		if *flags.openaiKey != "" {
			genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
		}
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	if config.MaxTokens > 0 {
		genaiOpts = append(genaiOpts, genai.WithMaxCompletionTokens(int64(config.MaxTokens)))
	}
	return genaiOpts
}

// buildInsightOptions constructs orchestration configuration options
func buildInsightOptions(config Config) []insight.Option {
	var insightOpts []insight.Option
	if config.GenerationTimeout > 0 {
		insightOpts = append(insightOpts, insight.WithGenerationTimeout(config.GenerationTimeout))
	}
	return insightOpts
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql", "dsn_set", true)
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildNudgeOptions constructs nudge sender configuration options
func buildNudgeOptions(config Config) []nudge.Option {
	var nudgeOpts []nudge.Option
	if config.TwilioSID != "" {
		nudgeOpts = append(nudgeOpts, nudge.WithAccountSID(config.TwilioSID))
	}
	if config.TwilioToken != "" {
		nudgeOpts = append(nudgeOpts, nudge.WithAuthToken(config.TwilioToken))
	}
	if config.TwilioFrom != "" {
		nudgeOpts = append(nudgeOpts, nudge.WithFromNumber(config.TwilioFrom))
	}
	return nudgeOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	apiOpts := []api.Option{api.WithVersion(Version)}
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
