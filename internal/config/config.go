package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	JWT        JWTConfig        `yaml:"jwt"`
	Chapa      ChapaConfig      `yaml:"chapa"`
	Migrations MigrationsConfig `yaml:"migrations"`
}

// HTTPServerConfig configures the listener and per-request timeouts
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig holds Postgres connection parameters, password comes from env only
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

// RedisConfig configures the cart snapshot store
type RedisConfig struct {
	Addr    string        `yaml:"addr" env-default:"localhost:6379"`
	CartTTL time.Duration `yaml:"cart_ttl" env-default:"720h"`
}

// KafkaConfig configures the order event producer
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env-default:"localhost:9092"`
	Buffer  int      `yaml:"buffer" env-default:"256"`
}

// JWTConfig - session token settings
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"` // minutes
}

// ChapaConfig configures the payment provider client; the secret key comes
// from the environment and is never written to disk
type ChapaConfig struct {
	BaseURL   string        `yaml:"base_url" env-default:"https://api.chapa.co/v1"`
	SecretKey string        `yaml:"-" env:"CHAPA_SECRET_KEY" env-required:"true"`
	Currency  string        `yaml:"currency" env-default:"ETB"`
	ReturnURL string        `yaml:"return_url" env-default:"http://localhost:3000/orders"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// MustLoad - panics when the config cannot be loaded
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s", configPath)
	}

	return &cfg
}
