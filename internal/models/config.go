package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string `mapstructure:"database_url"`
	RedisAddr   string `mapstructure:"redis_addr"`
	LogLevel    string `mapstructure:"log_level"`

	AI       AIConfig       `mapstructure:"ai"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Insights InsightsConfig `mapstructure:"insights"`
	Voice    VoiceConfig    `mapstructure:"voice"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Export   ExportConfig   `mapstructure:"export"`

	Holidays []Holiday `mapstructure:"holidays"`
}

type AIConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
}

type ForecastConfig struct {
	WeekendBoost      float64 `mapstructure:"weekend_boost"`
	HolidayBoost      float64 `mapstructure:"holiday_boost"`
	MaxDaysAhead      int     `mapstructure:"max_days_ahead"`
	HistoryDays       int     `mapstructure:"history_days"`
	MinHistoryDays    int     `mapstructure:"min_history_days"`
	AIMinHistoryDays  int     `mapstructure:"ai_min_history_days"`
	StockSafetyFactor float64 `mapstructure:"stock_safety_factor"`
	TopStockItems     int     `mapstructure:"top_stock_items"`
	AccuracyWindow    int     `mapstructure:"accuracy_window"`
	DefaultAccuracy   float64 `mapstructure:"default_accuracy"`
}

type PricingConfig struct {
	Elasticity          float64 `mapstructure:"elasticity"`
	NoiseThresholdPct   float64 `mapstructure:"noise_threshold_pct"`
	WindowDays          int     `mapstructure:"window_days"`
	FastMoverQty        int     `mapstructure:"fast_mover_qty"`
	SlowMoverQty        int     `mapstructure:"slow_mover_qty"`
	FastMoverRaisePct   float64 `mapstructure:"fast_mover_raise_pct"`
	SlowMoverCutPct     float64 `mapstructure:"slow_mover_cut_pct"`
	LowMarginPct        float64 `mapstructure:"low_margin_pct"`
	HighMarginPct       float64 `mapstructure:"high_margin_pct"`
	LowMarginRaisePct   float64 `mapstructure:"low_margin_raise_pct"`
	HighMarginCutPct    float64 `mapstructure:"high_margin_cut_pct"`
	CategoryBandPct     float64 `mapstructure:"category_band_pct"`
	UnderpricedRaisePct float64 `mapstructure:"underpriced_raise_pct"`
}

type InsightsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type VoiceConfig struct {
	JaccardThreshold float64        `mapstructure:"jaccard_threshold"`
	QuantityWords    map[string]int `mapstructure:"quantity_words"`
}

type KafkaConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BrokerList string `mapstructure:"broker_list"`
	ParseTopic string `mapstructure:"parse_topic"`
}

type ExportConfig struct {
	OutputPath   string       `mapstructure:"output_path"`
	OutputFolder string       `mapstructure:"output_folder"`
	Destination  string       `mapstructure:"destination"` // "local" or "s3"
	CloudStorage CloudStorage `mapstructure:"cloud_storage"`
}

type CloudStorage struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

// Holiday is a calendar entry the forecaster boosts for. Date is either
// "MM-DD" (recurring) or "YYYY-MM-DD" (movable holidays pinned to a year).
type Holiday struct {
	Date string `mapstructure:"date" json:"date"`
	Name string `mapstructure:"name" json:"name"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("warungops")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	setEngineDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// the config file is optional; defaults plus flags are enough
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}

func setEngineDefaults() {
	viper.SetDefault("log_level", "info")

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.model", "gpt-4o-mini")
	viper.SetDefault("ai.timeout", "8s")
	viper.SetDefault("ai.temperature", 0.2)

	viper.SetDefault("forecast.weekend_boost", 1.2)
	viper.SetDefault("forecast.holiday_boost", 1.3)
	viper.SetDefault("forecast.max_days_ahead", 14)
	viper.SetDefault("forecast.history_days", 30)
	viper.SetDefault("forecast.min_history_days", 3)
	viper.SetDefault("forecast.ai_min_history_days", 7)
	viper.SetDefault("forecast.stock_safety_factor", 1.2)
	viper.SetDefault("forecast.top_stock_items", 5)
	viper.SetDefault("forecast.accuracy_window", 30)
	viper.SetDefault("forecast.default_accuracy", 0.7)

	viper.SetDefault("pricing.elasticity", -1.5)
	viper.SetDefault("pricing.noise_threshold_pct", 3.0)
	viper.SetDefault("pricing.window_days", 30)
	viper.SetDefault("pricing.fast_mover_qty", 50)
	viper.SetDefault("pricing.slow_mover_qty", 10)
	viper.SetDefault("pricing.fast_mover_raise_pct", 5)
	viper.SetDefault("pricing.slow_mover_cut_pct", -10)
	viper.SetDefault("pricing.low_margin_pct", 30)
	viper.SetDefault("pricing.high_margin_pct", 70)
	viper.SetDefault("pricing.low_margin_raise_pct", 10)
	viper.SetDefault("pricing.high_margin_cut_pct", -5)
	viper.SetDefault("pricing.category_band_pct", 20)
	viper.SetDefault("pricing.underpriced_raise_pct", 8)

	viper.SetDefault("insights.cache_ttl", "1h")

	viper.SetDefault("voice.jaccard_threshold", 0.7)
	viper.SetDefault("voice.quantity_words", map[string]int{
		"satu": 1, "dua": 2, "tiga": 3, "empat": 4, "lima": 5,
	})

	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.broker_list", "localhost:9092")
	viper.SetDefault("kafka.parse_topic", "voice_parse_events")

	viper.SetDefault("export.output_path", "output")
	viper.SetDefault("export.output_folder", "warungops")
	viper.SetDefault("export.destination", "local")
}

// DefaultHolidays covers the fixed-date Indonesian national holidays. Movable
// observances (Idul Fitri, Nyepi and the like) shift yearly and should be
// pinned per deployment with YYYY-MM-DD entries.
var DefaultHolidays = []Holiday{
	{Date: "01-01", Name: "Tahun Baru"},
	{Date: "05-01", Name: "Hari Buruh"},
	{Date: "06-01", Name: "Hari Lahir Pancasila"},
	{Date: "08-17", Name: "Hari Kemerdekaan"},
	{Date: "12-25", Name: "Hari Natal"},
}
