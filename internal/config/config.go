package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string `env:"ADDR" envDefault:":8082"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"120m"`

	ConsumerKey    string `env:"TWITTER_CONSUMER_KEY,required,notEmpty"`
	ConsumerSecret string `env:"TWITTER_CONSUMER_SECRET,required,notEmpty"`
	AppToken       string `env:"TWITTER_ACCESS_TOKEN"`
	AppTokenSecret string `env:"TWITTER_ACCESS_TOKEN_SECRET"`
	CallbackURL    string `env:"TWITTER_CALLBACK_URL" envDefault:"http://localhost:3000/twitter-callback"`
	OAuthBaseURL   string `env:"TWITTER_API" envDefault:"https://api.twitter.com"`
	RESTBaseURL    string `env:"TWITTER_API_1_1" envDefault:"https://api.twitter.com/1.1"`

	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"15s"`
	UpstreamRate    float64       `env:"UPSTREAM_RATE" envDefault:"5"`
	UpstreamBurst   int           `env:"UPSTREAM_BURST" envDefault:"10"`
}

// Load reads the optional env file named by START (".env" when unset) and
// then parses the process environment into a Config.
func Load() (*Config, error) {
	/*
		START lets the start script choose between env files,
		a missing file is fine when everything is already exported
	*/
	if err := godotenv.Load(envFile()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.UpstreamRate <= 0 || cfg.UpstreamBurst <= 0 {
		return nil, errors.New("UPSTREAM_RATE and UPSTREAM_BURST must be positive")
	}

	return cfg, nil
}

func envFile() string {
	if name := os.Getenv("START"); name != "" {
		return name
	}
	return ".env"
}
