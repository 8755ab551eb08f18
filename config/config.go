package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"grievance-service/internal/model"
	"grievance-service/internal/reference"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Store        StoreConfig        `mapstructure:"store"`
	Database     DatabaseConfig     `mapstructure:"database"`
	RabbitMQ     RabbitMQConfig     `mapstructure:"rabbitmq"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Classifier   ClassifierConfig   `mapstructure:"classifier"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Jurisdiction model.Jurisdiction `mapstructure:"jurisdiction"`
	Alerts       AlertsConfig       `mapstructure:"alerts"`
	Reference    ReferenceConfig    `mapstructure:"reference"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// StoreConfig picks the backing store. "memory" runs without Postgres,
// RabbitMQ or Redis.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ClassifierConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  uint          `mapstructure:"retries"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type AlertsConfig struct {
	ScanInterval time.Duration `mapstructure:"scan_interval"`
	DedupTTL     time.Duration `mapstructure:"dedup_ttl"`
}

type ReferenceConfig struct {
	Officers []reference.Officer    `mapstructure:"officers"`
	Cities   []reference.CityCenter `mapstructure:"cities"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// LoadConfig reads path (JSON) when it exists, then applies GRIEVANCE_*
// environment overrides, e.g. GRIEVANCE_DATABASE_HOST.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("config: loaded .env")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("grievance")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return nil, err
			}
			log.Printf("config: %s not found, using defaults and environment", path)
		} else {
			log.Printf("config: loaded %s", v.ConfigFileUsed())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
	if cfg.Store.Driver != DriverPostgres && cfg.Store.Driver != DriverMemory {
		return nil, errors.New("config: store.driver must be postgres or memory")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("store.driver", DriverPostgres)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "grievances")

	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", "5672")
	v.SetDefault("rabbitmq.user", "guest")
	v.SetDefault("rabbitmq.password", "guest")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("classifier.endpoint", "http://localhost:9000/v1/classify")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.model", "")
	v.SetDefault("classifier.timeout", 20*time.Second)
	v.SetDefault("classifier.retries", 2)

	v.SetDefault("jwt.secret", "")

	v.SetDefault("jurisdiction.state", "Maharashtra")
	v.SetDefault("jurisdiction.city", "Pune")

	v.SetDefault("alerts.scan_interval", time.Hour)
	v.SetDefault("alerts.dedup_ttl", 24*time.Hour)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || strings.Contains(err.Error(), "no such file or directory")
}
