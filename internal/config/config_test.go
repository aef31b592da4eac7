package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Gmail: GmailConfig{
			ClientID:     "test",
			ClientSecret: "test",
		},
		Pipeline: PipelineConfig{
			HoursBack: 24,
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			CronSpec: "0 0 9 * * *",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	config := validConfig()
	assert.NoError(t, config.Validate())

	// Missing server port
	invalid := validConfig()
	invalid.Server.Port = ""
	assert.Error(t, invalid.Validate())

	// Lookback window out of range
	invalid = validConfig()
	invalid.Pipeline.HoursBack = 0
	assert.Error(t, invalid.Validate())

	invalid = validConfig()
	invalid.Pipeline.HoursBack = 169
	assert.Error(t, invalid.Validate())

	// Dedup without a database
	invalid = validConfig()
	invalid.Pipeline.Dedup = true
	assert.Error(t, invalid.Validate())

	// Dedup with a database is fine
	valid := validConfig()
	valid.Pipeline.Dedup = true
	valid.Database = DatabaseConfig{Host: "localhost", User: "test", DBName: "test"}
	assert.NoError(t, valid.Validate())

	// Database host set but incomplete
	invalid = validConfig()
	invalid.Database = DatabaseConfig{Host: "localhost"}
	assert.Error(t, invalid.Validate())

	// IMAP selected without credentials
	invalid = validConfig()
	invalid.Gmail.UseIMAP = true
	assert.Error(t, invalid.Validate())

	// Scheduler enabled without a cron spec
	invalid = validConfig()
	invalid.Scheduler.CronSpec = ""
	assert.Error(t, invalid.Validate())
}

func TestGmailConfigured(t *testing.T) {
	cfg := GmailConfig{}
	assert.False(t, cfg.Configured())

	cfg = GmailConfig{ClientID: "id", ClientSecret: "secret"}
	assert.True(t, cfg.Configured())

	cfg = GmailConfig{UseIMAP: true}
	assert.False(t, cfg.Configured())

	cfg = GmailConfig{UseIMAP: true, IMAPUser: "user", IMAPPassword: "pass"}
	assert.True(t, cfg.Configured())
}

func TestDatabaseDSN(t *testing.T) {
	config := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	dsn := config.GetDSN()
	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, dsn)
}
