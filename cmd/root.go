package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/warungops/warungops/internal/ai"
	"github.com/warungops/warungops/internal/cache"
	"github.com/warungops/warungops/internal/engine"
	"github.com/warungops/warungops/internal/export"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/repositories/postgres"
)

var (
	cfgFile  string
	storeID  string
	outletID string
)

var rootCmd = &cobra.Command{
	Use:   "warungops",
	Short: "Decision engine for Indonesian restaurant operations",
	Long: `warungops turns a warung's raw order history into daily decisions:
sales forecasts with stock recommendations, pricing suggestions, business
insights, and hands-free voice order entry in Indonesian. An optional LLM
overlay sharpens each output but is never required to produce one.`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.warungops.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeID, "store", "", "store (tenant) id")
	rootCmd.PersistentFlags().StringVar(&outletID, "outlet", "", "outlet id (omit for all outlets)")

	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address (empty uses in-process cache)")
	rootCmd.PersistentFlags().Bool("ai-enabled", false, "Enable the LLM overlay")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level")

	viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database-url"))
	viper.BindPFlag("redis_addr", rootCmd.PersistentFlags().Lookup("redis-addr"))
	viper.BindPFlag("ai.enabled", rootCmd.PersistentFlags().Lookup("ai-enabled"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".warungops")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func loadConfig() *models.Config {
	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)
	return cfg
}

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsed).
		With().Timestamp().Logger()
}

// appDeps bundles everything a subcommand needs, plus the pool handle so the
// command can close it on exit.
type appDeps struct {
	cfg    *models.Config
	pool   *pgxpool.Pool
	engine *engine.Engine
	closer func()
}

func buildApp(ctx context.Context) (*appDeps, error) {
	cfg := loadConfig()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	deps := engine.Deps{
		Orders:    postgres.NewOrderRepository(pool),
		Menu:      postgres.NewMenuItemRepository(pool),
		Forecasts: postgres.NewForecastRepository(pool),
		Pricing:   postgres.NewPricingRepository(pool),
		ParseLog:  postgres.NewParseLogRepository(pool),
		Cache:     cache.New(cfg.RedisAddr),
	}
	if cfg.AI.Enabled {
		deps.Completer = ai.NewClient(cfg.AI)
	}

	closer := func() { pool.Close() }
	if cfg.Kafka.Enabled {
		publisher, err := export.NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			pool.Close()
			return nil, err
		}
		deps.Publisher = publisher
		closer = func() {
			if err := publisher.Close(); err != nil {
				log.Warn().Err(err).Msg("kafka publisher close failed")
			}
			pool.Close()
		}
	}

	return &appDeps{
		cfg:    cfg,
		pool:   pool,
		engine: engine.New(cfg, deps),
		closer: closer,
	}, nil
}

func requireStore() error {
	if storeID == "" {
		return fmt.Errorf("--store is required")
	}
	return nil
}

// outletPtr returns nil when no outlet was selected, meaning all outlets.
func outletPtr() *string {
	if outletID == "" {
		return nil
	}
	return &outletID
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(err error) error {
	if msg := engine.Describe(err); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	return err
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
