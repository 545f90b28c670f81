// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig                   `mapstructure:"app"`
	Server       ServerConfig                `mapstructure:"server"`
	Database     DatabaseConfig              `mapstructure:"database"`
	Context      ContextConfig               `mapstructure:"context"`
	Orchestrator OrchestratorConfig          `mapstructure:"orchestrator"`
	Scoring      ScoringConfig               `mapstructure:"scoring"`
	Specialists  map[string]SpecialistConfig `mapstructure:"specialists"`
	Logging      LoggingConfig               `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	GrantIndex string   `mapstructure:"grant_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ContextConfig holds settings for the session context store.
type ContextConfig struct {
	TTL          int `mapstructure:"ttl"`           // minutes, 0 = no expiry
	HistoryLimit int `mapstructure:"history_limit"` // interactions kept per session
}

// OrchestratorConfig holds the turn-execution settings.
type OrchestratorConfig struct {
	TurnTimeout int `mapstructure:"turn_timeout"` // milliseconds
	UnitTimeout int `mapstructure:"unit_timeout"` // milliseconds
	MaxRetries  int `mapstructure:"max_retries"`  // per unit, per turn
}

// TurnTimeoutDuration returns the whole-turn deadline.
func (o OrchestratorConfig) TurnTimeoutDuration() time.Duration {
	return time.Duration(o.TurnTimeout) * time.Millisecond
}

// UnitTimeoutDuration returns the per-specialist deadline.
func (o OrchestratorConfig) UnitTimeoutDuration() time.Duration {
	return time.Duration(o.UnitTimeout) * time.Millisecond
}

// ScoringConfig holds default decision-engine weights. Weights may be
// overridden per request; the remainder is renormalized before scoring.
type ScoringConfig struct {
	Weights map[string]float64 `mapstructure:"weights"`
}

// SpecialistConfig holds the core settings applicable to every specialist unit.
type SpecialistConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Timeout    int  `mapstructure:"timeout"` // milliseconds
	MaxResults int  `mapstructure:"max_results"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
