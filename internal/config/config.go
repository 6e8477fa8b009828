package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	CORS struct {
		Origin string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		Issuer          string
		BcryptCost      int
	}
	Log struct {
		Level  string
		Format string
		File   string
	}
	Seed struct {
		Password string
	}
}

// Load reads configuration from environment variables and optional config files.
// Variables already present in the environment win over .env entries.
func Load(paths ...string) (Config, error) {
	_ = godotenv.Load() // optional .env

	v := viper.New()
	v.SetEnvPrefix("TASKHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8000")
	v.SetDefault("database.path", "data/taskhub.db")
	v.SetDefault("cors.origin", "")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 30)
	v.SetDefault("auth.issuer", "taskhub")
	v.SetDefault("auth.bcryptcost", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("seed.password", "password")

	// the allowed origin is also accepted under its historical name
	_ = v.BindEnv("cors.origin", "TASKHUB_CORS_ORIGIN", "FRONTEND_ORIGIN")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.CORS.Origin) == "" {
		errs = append(errs, errors.New("cors origin is required (TASKHUB_CORS_ORIGIN or FRONTEND_ORIGIN)"))
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("auth jwt secret is required (TASKHUB_AUTH_JWTSECRET)"))
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		errs = append(errs, errors.New("auth token ttl must be positive"))
	}
	return errors.Join(errs...)
}
