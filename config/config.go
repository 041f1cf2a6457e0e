package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/haukew/stromtarif-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If not assigned, the server will serve embedded templates and static
	// files. If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
}

type AppConfigDatabase struct {
	Path string
	// How many days data should be stored in database before it gets purged
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files should be stored before they gets deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 90
	}
	return *d.DataRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 90
	}
	return *d.BackupRetentionDays
}

type AppConfigDynatarif struct {
	BaseUrl      *string `mapstructure:"base_url"`
	Email        string  `mapstructure:"email"`
	PasswordFile string  `mapstructure:"password_file"` // File holding the account password, nothing else
	RunAt        *string `mapstructure:"run_at"`
}

func (d AppConfigDynatarif) GetBaseUrl() string {
	if d.BaseUrl == nil {
		return "https://api.dynatarif.de"
	}
	return *d.BaseUrl
}

func (d AppConfigDynatarif) GetRunAt() string {
	// Day-ahead quotes are published in the early afternoon
	if d.RunAt == nil {
		return "5 14 * * *"
	}
	return *d.RunAt
}

func (d AppConfigDynatarif) ReadPassword() (string, error) {
	data, err := os.ReadFile(d.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("reading password file %s: %w", d.PasswordFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}

type AppConfigMqtt struct {
	Host        string
	Port        int16
	Username    string
	Password    string
	TopicPrefix *string `mapstructure:"topic_prefix"`
}

// Enabled reports whether a broker is configured at all; without a host the
// daemon runs without MQTT publishing.
func (m AppConfigMqtt) Enabled() bool {
	return m.Host != ""
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "stromtarif"
	}
	return *m.TopicPrefix
}

type AppConfigAnalysis struct {
	// Length of the cheapest-window search in hours, must be >= 1
	WindowHours *int `mapstructure:"window_hours"`
	// How many of the cheapest sliding windows the API reports
	TopWindows *int `mapstructure:"top_windows"`
}

func (a AppConfigAnalysis) GetWindowHours() int {
	if a.WindowHours == nil {
		return 3
	}
	return *a.WindowHours
}

func (a AppConfigAnalysis) GetTopWindows() int {
	if a.TopWindows == nil {
		return 5
	}
	return *a.TopWindows
}

type AppConfigGui struct {
	// Timezone for displaying times in the GUI, default: UTC
	Timezone *string `mapstructure:"timezone"`
}

func (g AppConfigGui) GetTimezone() string {
	if g.Timezone == nil {
		return "UTC"
	}
	return *g.Timezone
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return "JSON"
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return "TEXT"
	}
	return "JSON"
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api       AppConfigApi
	Database  AppConfigDatabase
	Dynatarif AppConfigDynatarif `mapstructure:"dynatarif"`
	Mqtt      AppConfigMqtt      `mapstructure:"mqtt"`
	Analysis  AppConfigAnalysis  `mapstructure:"analysis"`
	Gui       AppConfigGui       `mapstructure:"gui"`
	Logging   AppConfigLogging   `mapstructure:"logging"`
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}
