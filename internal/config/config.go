package config

import (
	"errors"
	"fmt"
)

// Storage backends for the question bank.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Question order modes.
const (
	OrderShuffle = "shuffle"
	OrderShared  = "shared"
)

// Config holds all server settings.
type Config struct {
	Bind          string
	Port          int
	QuestionTime  int
	TimeBonus     int
	MaxPlayers    int
	Store         string
	QuestionsFile string
	DBPath        string
	UploadsDir    string
	Order         string
	LogLevel      string
	HTTPLog       bool
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Bind:          "0.0.0.0",
		Port:          8080,
		QuestionTime:  15,
		TimeBonus:     3,
		MaxPlayers:    10,
		Store:         StoreFile,
		QuestionsFile: "questions.json",
		DBPath:        "quizwire.db",
		UploadsDir:    "uploads",
		Order:         OrderShuffle,
		LogLevel:      "info",
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.QuestionTime < 1 {
		return fmt.Errorf("invalid question time: %d", c.QuestionTime)
	}
	if c.TimeBonus < 1 || c.TimeBonus > c.QuestionTime {
		return fmt.Errorf("time bonus must be between 1 and the question time, got %d", c.TimeBonus)
	}
	if c.MaxPlayers < 1 {
		return fmt.Errorf("invalid player limit: %d", c.MaxPlayers)
	}
	switch c.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store, StoreFile, StoreSQLite)
	}
	switch c.Order {
	case OrderShuffle, OrderShared:
	default:
		return fmt.Errorf("unknown order mode %q (want %s or %s)", c.Order, OrderShuffle, OrderShared)
	}
	if c.Store == StoreFile && c.QuestionsFile == "" {
		return errors.New("questions file path must not be empty")
	}
	if c.Store == StoreSQLite && c.DBPath == "" {
		return errors.New("database path must not be empty")
	}
	return nil
}

// ListenAddr returns the bind address in host:port form.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// SharedOrder reports whether lockstep question order is enabled.
func (c *Config) SharedOrder() bool {
	return c.Order == OrderShared
}
