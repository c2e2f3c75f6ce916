// Package buildCFG assembles typed configuration sections from the loaded
// config file.
package buildCFG

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Password string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("db.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("db.master_dsn is required")
	}
	slaveDSNs := cfg.GetStringSlice("db.slave_dsns")

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("db.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("db.max_idle_conns"),
		ConnMaxLifetime: cfg.GetDuration("db.conn_max_lifetime"),
	}
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 10
	}

	log.Info().Int("slaves", len(slaveDSNs)).Msg("DB config built")
	return masterDSN, slaveDSNs, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Url:      cfg.GetString("rabbit.url"),
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if rc.Url == "" {
		return rc, fmt.Errorf("rabbit.url is required")
	}
	if rc.Exchange == "" {
		rc.Exchange = "attendee.notifications"
	}
	if rc.Queue == "" {
		rc.Queue = "attendee.notifications.mail"
	}
	return rc, nil
}

func BuildAuthConfig(cfg *config.Config, log *zerolog.Logger) (AuthConfig, error) {
	ac := AuthConfig{
		Secret:   cfg.GetString("auth.secret"),
		TokenTTL: cfg.GetDuration("auth.token_ttl"),
	}
	if ac.Secret == "" {
		return ac, fmt.Errorf("auth.secret is required")
	}
	if ac.TokenTTL == 0 {
		ac.TokenTTL = 30 * time.Minute
		log.Info().Msg("auth.token_ttl not set, defaulting to 30m")
	}
	return ac, nil
}

func BuildSMTPConfig(cfg *config.Config, log *zerolog.Logger) SMTPConfig {
	sc := SMTPConfig{
		Host:     cfg.GetString("smtp.host"),
		Port:     cfg.GetInt("smtp.port"),
		From:     cfg.GetString("smtp.from"),
		Password: cfg.GetString("smtp.password"),
	}
	if sc.Host == "" {
		log.Warn().Msg("smtp.host not set, notification emails disabled")
	}
	if sc.Port == 0 {
		sc.Port = 587
	}
	return sc
}
