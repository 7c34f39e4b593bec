// Ininicializing common application configuration
package config

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	App    AppConfig    `mapstructure:"app"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
}

type ServerConfig struct {
	AppVersion   string        `mapstructure:"app_version"`
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Idle_timeout time.Duration `mapstructure:"idle_timeout"`
	Env          string        `mapstructure:"environment"`
	Mode         string        `mapstructure:"mode"`
	LogLevel     string        `mapstructure:"log_level"`
}

type AppConfig struct {
	TempDir         string        `mapstructure:"temp_dir"`     // root for per-request workspaces, "" = os.TempDir()
	StoragePath     string        `mapstructure:"storage_path"` // stored results for two-step download
	OutputName      string        `mapstructure:"output_name"`
	MaxUploadMB     int64         `mapstructure:"max_upload_mb"`
	MaxExtractedMB  int64         `mapstructure:"max_extracted_mb"`
	MaxEntries      int           `mapstructure:"max_entries"`
	InspectImages   bool          `mapstructure:"inspect_images"`
	ResultTTL       time.Duration `mapstructure:"result_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
	Enabled bool     `mapstructure:"enabled"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	viperInstance.SetEnvPrefix("RENAMER")
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	err := viperInstance.ReadInConfig()

	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		logrus.Warn("config file not found, using defaults and environment")
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		logrus.Errorf("unable to decode config into struct, %v", err)
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.log_level", "info")

	v.SetDefault("app.temp_dir", "")
	v.SetDefault("app.storage_path", "./storage")
	v.SetDefault("app.output_name", "renamed_images.zip")
	v.SetDefault("app.max_upload_mb", 256)
	v.SetDefault("app.max_extracted_mb", 1024)
	v.SetDefault("app.max_entries", 20000)
	v.SetDefault("app.inspect_images", false)
	v.SetDefault("app.result_ttl", 30*time.Minute)
	v.SetDefault("app.cleanup_interval", time.Minute)

	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.topic", "archive-events")
	v.SetDefault("kafka.group_id", "archive-eventlog")
	v.SetDefault("kafka.enabled", false)
}
