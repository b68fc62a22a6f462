package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel     string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	ListenAddr   string `yaml:"listen-addr" env:"LISTEN_ADDR" env-default:":12345"`
	HTTPPort     string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	HTTPDisabled bool   `yaml:"http-disabled" env:"HTTP_DISABLED" env-default:"false"`

	// Games is the number of games to serve; -1 serves until shutdown.
	// Zero is replaced by the default, as for every other key.
	Games       int           `yaml:"games" env:"GAMES" env-default:"1"`
	IdleTimeout time.Duration `yaml:"idle-timeout" env:"IDLE_TIMEOUT" env-default:"0s"`
	Redis       Redis         `yaml:"redis"`
	Client      Client        `yaml:"client"`
}

type Redis struct {
	Enabled bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	TTL     time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"1h"`
}

type Client struct {
	Host string `yaml:"host" env:"CLIENT_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"CLIENT_PORT" env-default:"12345"`

	// Bot lets the client pick random free cells instead of reading stdin.
	Bot bool `yaml:"bot" env:"CLIENT_BOT" env-default:"false"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// LoadClient - like MustLoad, but a missing file falls back to defaults and environment.
func LoadClient(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		err = cleanenv.ReadConfig(path, config)
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load client config: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}

func (that *Client) GetServerAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}
