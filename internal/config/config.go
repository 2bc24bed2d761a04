// Package config loads convo-notes settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPrompt is the instruction sent to the tagging tool with each document.
const DefaultPrompt = `Analyze this conversation and suggest 2-5 relevant one word tags that describe the topic, technology, or type of discussion.

Requirements:
- Tags must be single words only (no spaces)
- Tags must be lowercase
- Tags should be relevant and descriptive
- Examples: python, debugging, react, tutorial, planning

Open the conversation file and at the end of the file add these tags. Each tag should be on a new line surrounded by [[]] like [[tag]]. Do not modify or remove any existing content. Do not remove the existing [[claude]] tag if it exists.`

// Tool backends.
const (
	BackendCommand = "command"
	BackendAPI     = "api"
)

// Duration is a time.Duration written as a string ("60s", "2m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all settings.
type Config struct {
	ConversationsDir string        `toml:"conversations_dir"`
	DBPath           string        `toml:"db_path"`
	Tagging          TaggingConfig `toml:"tagging"`
}

// TaggingConfig configures the tagging stage.
type TaggingConfig struct {
	Prompt         string        `toml:"prompt"`
	Timeout        Duration      `toml:"timeout"`
	CallsPerMinute float64       `toml:"calls_per_minute"`
	Backend        string        `toml:"backend"`
	Command        CommandConfig `toml:"command"`
	API            APIConfig     `toml:"api"`
}

// CommandConfig configures the subprocess backend.
type CommandConfig struct {
	Name         string   `toml:"name"`
	AllowedTools string   `toml:"allowed_tools"`
	Args         []string `toml:"args"`
}

// APIConfig configures the Anthropic API backend.
type APIConfig struct {
	Model     string `toml:"model"`
	MaxTokens int64  `toml:"max_tokens"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ConversationsDir: "conversations",
		Tagging: TaggingConfig{
			Prompt:  DefaultPrompt,
			Timeout: Duration{60 * time.Second},
			Backend: BackendCommand,
			Command: CommandConfig{
				Name:         "claude",
				AllowedTools: "Read,Write,Edit",
			},
			API: APIConfig{
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 256,
			},
		},
	}
}

// DefaultPath returns ~/.convo-notes/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".convo-notes", "config.toml")
}

// Load reads the config at path over the defaults. If path is empty,
// $CONVO_NOTES_CONFIG and then DefaultPath are tried; a missing default file
// yields the defaults, a missing explicit file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv("CONVO_NOTES_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
		explicit = false
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Tagging.Backend {
	case BackendCommand:
		if c.Tagging.Command.Name == "" {
			return fmt.Errorf("tagging.command.name is required")
		}
	case BackendAPI:
		if c.Tagging.API.Model == "" {
			return fmt.Errorf("tagging.api.model is required")
		}
	default:
		return fmt.Errorf("unknown tagging backend %q", c.Tagging.Backend)
	}
	if c.Tagging.Timeout.Duration <= 0 {
		return fmt.Errorf("tagging.timeout must be positive")
	}
	if c.Tagging.CallsPerMinute < 0 {
		return fmt.Errorf("tagging.calls_per_minute must not be negative")
	}
	if c.Tagging.Prompt == "" {
		return fmt.Errorf("tagging.prompt must not be empty")
	}
	return nil
}
