package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Canvas   CanvasConfig   `mapstructure:"canvas"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

// CanvasConfig bounds the point generator. Generated points stay at least
// Margin pixels away from every canvas edge.
type CanvasConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	Margin float64 `mapstructure:"margin"`
	Points int     `mapstructure:"points"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" or "postgres"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":5000")
	viper.SetDefault("server.rpc_address", ":5001")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("canvas.width", 700)
	viper.SetDefault("canvas.height", 650)
	viper.SetDefault("canvas.margin", 40)
	viper.SetDefault("canvas.points", 20)
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "gorm")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
