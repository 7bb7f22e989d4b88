package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/ai"
	"github.com/talentscout/hiring-assistant/internal/ai/gemini"
	"github.com/talentscout/hiring-assistant/internal/interview"
	"github.com/talentscout/hiring-assistant/internal/secrets"
	"github.com/talentscout/hiring-assistant/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "hiring-assistant"
)

type Config struct {
	Company     string        `mapstructure:"company"`
	DataFile    string        `mapstructure:"data-file"`
	DatabaseURL string        `mapstructure:"database-url"`
	AI          *AIConfig     `mapstructure:"ai"`
	Server      *ServerConfig `mapstructure:"server"`
}

type AIConfig struct {
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api-key"`
	APIKeyFile  string  `mapstructure:"api-key-file"`
	MaxTokens   int     `mapstructure:"max-tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hiring-assistant is an AI screening chatbot that interviews candidates and records their profiles",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("database-url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hiring-assistant.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	viper.SetDefault("company", "TalentScout")
	viper.SetDefault("data-file", "data/candidates.json")
	viper.SetDefault("ai.model", "gemini-2.5-flash")
	viper.SetDefault("ai.max-tokens", 1000)
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.allowed-origins", []string{"*"})

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional unless one was named explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}

// Validate checks the effective configuration. It also backs the engine's
// diagnostics config probe.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Company) == "" {
		return fmt.Errorf("company must not be empty")
	}
	if c.DatabaseURL == "" && strings.TrimSpace(c.DataFile) == "" {
		return fmt.Errorf("either data-file or database-url must be set")
	}
	if c.AI != nil {
		if c.AI.MaxTokens <= 0 {
			return fmt.Errorf("ai.max-tokens must be positive, got %d", c.AI.MaxTokens)
		}
		if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
			return fmt.Errorf("ai.temperature must be between 0 and 2, got %g", c.AI.Temperature)
		}
	}

	return nil
}

// newCompleter builds the completion client, degrading to a disabled
// completer when no usable API key is configured. The conversation still
// works in that case through the deterministic fallbacks.
func newCompleter(ctx context.Context, config *Config, logger *zap.Logger) ai.Completer {
	key, err := secrets.LoadOptional(secrets.Source{
		Name:  "gemini api key",
		File:  config.AI.APIKeyFile,
		Env:   "GEMINI_API_KEY",
		Value: config.AI.APIKey,
	})
	if err != nil {
		logger.Warn("loading gemini api key, running without completion service", zap.Error(err))
		return &ai.Disabled{Reason: err.Error()}
	}
	if key == "" {
		logger.Warn("no gemini api key configured, running without completion service")
		return &ai.Disabled{Reason: "no api key configured"}
	}

	client, err := gemini.NewClient(ctx, key, config.AI.Model, config.AI.MaxTokens, config.AI.Temperature, logger)
	if err != nil {
		logger.Warn("creating gemini client, running without completion service", zap.Error(err))
		return &ai.Disabled{Reason: err.Error()}
	}

	return client
}

// newStore picks the persistence backend: Postgres when database-url is set,
// the JSON file otherwise. The returned closer is never nil.
func newStore(ctx context.Context, config *Config, logger *zap.Logger) (store.Store, func(), error) {
	if config.DatabaseURL != "" {
		pg, err := store.NewPgStore(ctx, config.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return pg, pg.Close, nil
	}

	return store.NewFileStore(config.DataFile, logger), func() {}, nil
}

func newEngine(completer ai.Completer, st store.Store, config *Config, logger *zap.Logger) *interview.Engine {
	return interview.NewEngine(interview.Options{
		Completer:   completer,
		Store:       st,
		Logger:      logger,
		Company:     config.Company,
		ConfigCheck: config.Validate,
	})
}
