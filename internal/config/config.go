package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gmail     GmailConfig     `mapstructure:"gmail"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Notion    NotionConfig    `mapstructure:"notion"`
	Slack     SlackConfig     `mapstructure:"slack"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds the optional MySQL connection used for run history
// and message deduplication. With an empty host the service runs without
// persistence.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GmailConfig holds mailbox access configuration
type GmailConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	TokenFile    string `mapstructure:"token_file"`
	UserEmail    string `mapstructure:"user_email"`
	UseIMAP      bool   `mapstructure:"use_imap"`
	IMAPHost     string `mapstructure:"imap_host"`
	IMAPPort     int    `mapstructure:"imap_port"`
	IMAPUser     string `mapstructure:"imap_user"`
	IMAPPassword string `mapstructure:"imap_password"`
}

// OpenAIConfig holds classifier configuration. An empty API key selects the
// deterministic fallback classifier.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	APIBase string `mapstructure:"api_base"`
	Model   string `mapstructure:"model"`
}

// NotionConfig holds record store configuration
type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
	APIBase    string `mapstructure:"api_base"`
}

// SlackConfig holds digest webhook configuration
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// PipelineConfig holds pipeline behavior configuration
type PipelineConfig struct {
	HoursBack int  `mapstructure:"hours_back"`
	Dedup     bool `mapstructure:"dedup"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	CronSpec string `mapstructure:"cron_spec"`
	Enabled  bool   `mapstructure:"enabled"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()

	// Bind environment variables
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.port", 3306)

	viper.SetDefault("gmail.token_file", "token.json")
	viper.SetDefault("gmail.user_email", "me")
	viper.SetDefault("gmail.use_imap", false)
	viper.SetDefault("gmail.imap_host", "imap.gmail.com")
	viper.SetDefault("gmail.imap_port", 993)

	viper.SetDefault("openai.api_base", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4o-mini")

	viper.SetDefault("notion.api_base", "https://api.notion.com")

	viper.SetDefault("pipeline.hours_back", 24)
	viper.SetDefault("pipeline.dedup", false)

	// Daily digest at 09:00, cron spec with a seconds field.
	viper.SetDefault("scheduler.cron_spec", "0 0 9 * * *")
	viper.SetDefault("scheduler.enabled", true)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// Gmail
	viper.BindEnv("gmail.client_id", "GMAIL_CLIENT_ID")
	viper.BindEnv("gmail.client_secret", "GMAIL_CLIENT_SECRET")
	viper.BindEnv("gmail.refresh_token", "GMAIL_REFRESH_TOKEN")
	viper.BindEnv("gmail.token_file", "GMAIL_TOKEN_FILE")
	viper.BindEnv("gmail.user_email", "GMAIL_USER_EMAIL")
	viper.BindEnv("gmail.use_imap", "GMAIL_USE_IMAP")
	viper.BindEnv("gmail.imap_host", "GMAIL_IMAP_HOST")
	viper.BindEnv("gmail.imap_port", "GMAIL_IMAP_PORT")
	viper.BindEnv("gmail.imap_user", "GMAIL_IMAP_USER")
	viper.BindEnv("gmail.imap_password", "GMAIL_IMAP_PASSWORD")

	// OpenAI
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.api_base", "OPENAI_API_BASE")
	viper.BindEnv("openai.model", "OPENAI_MODEL")

	// Notion
	viper.BindEnv("notion.token", "NOTION_TOKEN", "NOTION_API_KEY")
	viper.BindEnv("notion.database_id", "NOTION_DATABASE_ID")
	viper.BindEnv("notion.api_base", "NOTION_API_BASE")

	// Slack
	viper.BindEnv("slack.webhook_url", "SLACK_WEBHOOK_URL")

	// Pipeline
	viper.BindEnv("pipeline.hours_back", "PIPELINE_HOURS_BACK")
	viper.BindEnv("pipeline.dedup", "PIPELINE_DEDUP")

	// Scheduler
	viper.BindEnv("scheduler.cron_spec", "SCHEDULER_CRON_SPEC")
	viper.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Enabled reports whether a database is configured at all.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// Configured reports whether mailbox access is usable. Without it the
// service still starts, but fetch and pipeline operations answer
// not-configured.
func (c *GmailConfig) Configured() bool {
	if c.UseIMAP {
		return c.IMAPUser != "" && c.IMAPPassword != ""
	}
	return c.ClientID != "" && c.ClientSecret != ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Enabled() {
		if c.Database.User == "" || c.Database.DBName == "" {
			return fmt.Errorf("database user and dbname are required when a database host is set")
		}
	} else if c.Pipeline.Dedup {
		return fmt.Errorf("message deduplication requires a database")
	}

	if c.Gmail.UseIMAP && (c.Gmail.IMAPUser == "" || c.Gmail.IMAPPassword == "") {
		return fmt.Errorf("IMAP credentials are required when using IMAP")
	}

	if c.Pipeline.HoursBack < 1 || c.Pipeline.HoursBack > 168 {
		return fmt.Errorf("pipeline hours_back must be between 1 and 168")
	}

	if c.Scheduler.Enabled && c.Scheduler.CronSpec == "" {
		return fmt.Errorf("scheduler cron_spec is required when the scheduler is enabled")
	}

	return nil
}
