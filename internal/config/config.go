package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/arbor/internal/attr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTrees   = 9
	DefaultColumns = 3
	DefaultWidth   = 240
	DefaultHeight  = 240
	DefaultMargin  = 5
	DefaultDelayMs = 50
	DefaultPollMs  = 250
	DefaultTheme   = "forest"
	DefaultWatcher = "memory"
	DefaultDataDir = "runs"
)

var (
	ErrFormat  = errors.New("config: unsupported file extension")
	ErrInvalid = errors.New("config: invalid value")
)

type Config struct {
	Trees      int                      `yaml:"trees" toml:"trees"`
	Columns    int                      `yaml:"columns" toml:"columns"`
	Width      int                      `yaml:"width" toml:"width"`
	Height     int                      `yaml:"height" toml:"height"`
	Margin     float64                  `yaml:"margin" toml:"margin"`
	DelayMs    int                      `yaml:"delay_ms" toml:"delay_ms"`
	Seed       int64                    `yaml:"seed" toml:"seed"`
	Theme      string                   `yaml:"theme" toml:"theme"`
	Preset     string                   `yaml:"preset,omitempty" toml:"preset,omitempty"`
	Attributes map[string]AttributeSpec `yaml:"attributes,omitempty" toml:"attributes,omitempty"`
	Watcher    string                   `yaml:"watcher" toml:"watcher"`
	StateFile  string                   `yaml:"state_file,omitempty" toml:"state_file,omitempty"`
	PollMs     int                      `yaml:"poll_ms" toml:"poll_ms"`
	Redis      RedisConfig              `yaml:"redis" toml:"redis"`
	DataDir    string                   `yaml:"data_dir" toml:"data_dir"`
	Journal    bool                     `yaml:"journal" toml:"journal"`
}

// AttributeSpec overrides parts of one attribute's spec. Unset fields keep
// the value from the preset or the stock table.
type AttributeSpec struct {
	Initial *float64 `yaml:"initial,omitempty" toml:"initial,omitempty"`
	VaryBy  *float64 `yaml:"vary_by,omitempty" toml:"vary_by,omitempty"`
	Min     *float64 `yaml:"min,omitempty" toml:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" toml:"max,omitempty"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr,omitempty" toml:"addr,omitempty"`
	Key     string `yaml:"key,omitempty" toml:"key,omitempty"`
	Channel string `yaml:"channel,omitempty" toml:"channel,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Trees:   DefaultTrees,
		Columns: DefaultColumns,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Margin:  DefaultMargin,
		DelayMs: DefaultDelayMs,
		Theme:   DefaultTheme,
		Watcher: DefaultWatcher,
		PollMs:  DefaultPollMs,
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML or TOML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	case ".toml":
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(cfg)
		data = []byte(b.String())
	default:
		return fmt.Errorf("%w: %q", ErrFormat, ext)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Trees < 1:
		return fmt.Errorf("%w: trees %d", ErrInvalid, c.Trees)
	case c.Columns < 1:
		return fmt.Errorf("%w: columns %d", ErrInvalid, c.Columns)
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.DelayMs < 0:
		return fmt.Errorf("%w: delay_ms %d", ErrInvalid, c.DelayMs)
	}
	_, err := c.Table()
	return err
}

// Table builds the attribute table: the preset, or the stock table when no
// preset is named, with the per-attribute overrides applied on top.
func (c *Config) Table() (attr.Table, error) {
	table := attr.DefaultTable()
	if c.Preset != "" {
		p, err := GetPreset(c.Preset)
		if err != nil {
			return table, err
		}
		table = p.Table
	}

	for key, o := range c.Attributes {
		n, err := attr.ParseName(key)
		if err != nil {
			return table, fmt.Errorf("config: attributes: %w", err)
		}
		s := &table[n]
		if o.Initial != nil {
			s.Initial = *o.Initial
		}
		if o.VaryBy != nil {
			s.VaryBy = *o.VaryBy
		}
		if o.Min != nil {
			s.Min = attr.Bound(*o.Min)
		}
		if o.Max != nil {
			s.Max = attr.Bound(*o.Max)
		}
	}
	if err := table.Validate(); err != nil {
		return table, err
	}
	return table, nil
}

func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

func (c *Config) Poll() time.Duration {
	return time.Duration(c.PollMs) * time.Millisecond
}
