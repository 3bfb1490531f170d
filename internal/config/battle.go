package config

import (
	"fmt"
	"time"
)

const DefaultMaxRounds = 10

type BattleConfig struct {
	MaxRounds    int    `yaml:"max_rounds" json:"max_rounds"`
	AllowRetreat *bool  `yaml:"allow_retreat" json:"allow_retreat,omitempty"`
	Seed         int64  `yaml:"seed" json:"seed"`
	StepDelayMS  int    `yaml:"step_delay_ms" json:"step_delay_ms"`
	LogLevel     string `yaml:"log_level" json:"log_level"`
}

// Normalize fills defaults in place and rejects values the engine cannot run with.
func (c *BattleConfig) Normalize() error {
	if c.MaxRounds == 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("battle: max_rounds must be >= 1, got %d", c.MaxRounds)
	}
	if c.AllowRetreat == nil {
		t := true
		c.AllowRetreat = &t
	}
	if c.StepDelayMS < 0 {
		return fmt.Errorf("battle: step_delay_ms must be >= 0, got %d", c.StepDelayMS)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

func (c BattleConfig) Retreat() bool { return c.AllowRetreat == nil || *c.AllowRetreat }

func (c BattleConfig) StepDelay() time.Duration {
	return time.Duration(c.StepDelayMS) * time.Millisecond
}
