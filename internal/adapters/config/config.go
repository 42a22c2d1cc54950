package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds CLI configuration from config.toml.
type Config struct {
	Server   string   `toml:"server"`
	Username string   `toml:"username"`
	Password string   `toml:"password"`
	Timeout  Duration `toml:"timeout"`

	Sync Sync `toml:"sync"`
	Push Push `toml:"push"`
}

// Sync tunes the attach-mode synchronization loop.
type Sync struct {
	PollInterval Duration `toml:"poll_interval"`
	TickInterval Duration `toml:"tick_interval"`
	Repeat       string   `toml:"repeat"`
	MPRIS        bool     `toml:"mpris"`
}

// Push configures the optional MQTT status feed. Empty broker disables it.
type Push struct {
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	ClientID string `toml:"client_id"`
}

// Duration accepts Go duration strings like "500ms" in TOML values.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for toml decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load loads config.toml if present. Missing file returns an empty config.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if info.IsDir() {
		return Config{}, errors.New("config path is a directory")
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "juke", "config.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "juke", "config.toml"), nil
}
