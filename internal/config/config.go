package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	VotePolicyPerVoter  = "per_voter"
	VotePolicyUnlimited = "unlimited"

	MinBcryptCost = 10
	MaxBcryptCost = 31

	minSecretLen = 32
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTSecret  []byte
	BcryptCost int
	VotePolicy string

	MapboxToken       string
	DirectionsURL     string
	DirectionsTimeout time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		ServiceName: EnvDefault("SERVICE_NAME", "trafine-api"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		VotePolicy:  EnvDefault("VOTE_POLICY", VotePolicyPerVoter),
		MapboxToken: os.Getenv("MAPBOX_ACCESS_TOKEN"),

		DirectionsURL: EnvDefault("DIRECTIONS_URL", "https://api.mapbox.com/directions/v5/mapbox/driving"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "incidents"),
	}

	var err error
	if cfg.ServerPort, err = EnvInt("SERVER_PORT", 8080); err != nil {
		errs = append(errs, err)
	}
	if cfg.BcryptCost, err = EnvInt("BCRYPT_COST", MinBcryptCost); err != nil {
		errs = append(errs, err)
	}
	if cfg.DirectionsTimeout, err = EnvDuration("DIRECTIONS_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}

	if len(cfg.JWTSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	} else if len(cfg.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen))
	}
	if cfg.MapboxToken == "" {
		errs = append(errs, errors.New("missing required env MAPBOX_ACCESS_TOKEN"))
	}
	if cfg.BcryptCost < MinBcryptCost || cfg.BcryptCost > MaxBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d, %d]", MinBcryptCost, MaxBcryptCost))
	}
	if cfg.VotePolicy != VotePolicyPerVoter && cfg.VotePolicy != VotePolicyUnlimited {
		errs = append(errs, fmt.Errorf("VOTE_POLICY must be %q or %q", VotePolicyPerVoter, VotePolicyUnlimited))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func EnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
