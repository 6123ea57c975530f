// Package config loads tdx settings: an embedded default file with an
// optional user file (YAML or TOML) merged on top.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	// ErrUnknownTheme is returned when a theme name is not defined.
	ErrUnknownTheme = errors.New("unknown theme")
	// ErrUnsupportedConfigFormat is returned for config files that are neither YAML nor TOML.
	ErrUnsupportedConfigFormat = errors.New("unsupported config format")
)

// Config is the full tdx configuration.
type Config struct {
	App        AppConfig              `yaml:"app" toml:"app" json:"app"`
	Source     SourceConfig           `yaml:"source" toml:"source" json:"source"`
	Navigation NavigationConfig       `yaml:"navigation" toml:"navigation" json:"navigation"`
	UI         UIConfig               `yaml:"ui" toml:"ui" json:"ui"`
	Themes     map[string]ThemeConfig `yaml:"themes" toml:"themes" json:"themes"`
}

type AppConfig struct {
	Name        string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
}

// SourceConfig describes where task records come from.
type SourceConfig struct {
	// URL is an http(s) endpoint or a local file path.
	URL       string `yaml:"url,omitempty" toml:"url,omitempty" json:"url,omitempty"`
	Timeout   string `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty" toml:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// TimeoutDuration parses Timeout. An empty or zero value means no timeout.
func (s SourceConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(s.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s.Timeout))
	if err != nil {
		return 0, fmt.Errorf("source.timeout %q: %w", s.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("source.timeout %q: must not be negative", s.Timeout)
	}
	return d, nil
}

type NavigationConfig struct {
	Path         string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`
	MaxURLLength int    `yaml:"max_url_length,omitempty" toml:"max_url_length,omitempty" json:"max_url_length,omitempty"`
	MaxEntries   int    `yaml:"max_entries,omitempty" toml:"max_entries,omitempty" json:"max_entries,omitempty"`
	// Replace makes filter writes replace the current history entry instead of pushing.
	Replace bool `yaml:"replace,omitempty" toml:"replace,omitempty" json:"replace,omitempty"`
}

type UIConfig struct {
	Theme       string          `yaml:"theme,omitempty" toml:"theme,omitempty" json:"theme,omitempty"`
	Output      string          `yaml:"output,omitempty" toml:"output,omitempty" json:"output,omitempty"`
	Placeholder string          `yaml:"placeholder,omitempty" toml:"placeholder,omitempty" json:"placeholder,omitempty"`
	EmptyText   string          `yaml:"empty_text,omitempty" toml:"empty_text,omitempty" json:"empty_text,omitempty"`
	LoadingText string          `yaml:"loading_text,omitempty" toml:"loading_text,omitempty" json:"loading_text,omitempty"`
	ErrorText   string          `yaml:"error_text,omitempty" toml:"error_text,omitempty" json:"error_text,omitempty"`
	TitleWidth  int             `yaml:"title_width,omitempty" toml:"title_width,omitempty" json:"title_width,omitempty"`
	Highlight   HighlightConfig `yaml:"highlight,omitempty" toml:"highlight,omitempty" json:"highlight,omitempty"`
}

// HighlightConfig holds the markers used by markup output.
type HighlightConfig struct {
	Open  string `yaml:"open,omitempty" toml:"open,omitempty" json:"open,omitempty"`
	Close string `yaml:"close,omitempty" toml:"close,omitempty" json:"close,omitempty"`
}

// ThemeConfig holds ANSI color codes or hex strings.
type ThemeConfig struct {
	HeaderFG    string `yaml:"header_fg,omitempty" toml:"header_fg,omitempty" json:"header_fg,omitempty"`
	HeaderBG    string `yaml:"header_bg,omitempty" toml:"header_bg,omitempty" json:"header_bg,omitempty"`
	SelectedFG  string `yaml:"selected_fg,omitempty" toml:"selected_fg,omitempty" json:"selected_fg,omitempty"`
	SelectedBG  string `yaml:"selected_bg,omitempty" toml:"selected_bg,omitempty" json:"selected_bg,omitempty"`
	HighlightFG string `yaml:"highlight_fg,omitempty" toml:"highlight_fg,omitempty" json:"highlight_fg,omitempty"`
	HighlightBG string `yaml:"highlight_bg,omitempty" toml:"highlight_bg,omitempty" json:"highlight_bg,omitempty"`
	Muted       string `yaml:"muted,omitempty" toml:"muted,omitempty" json:"muted,omitempty"`
	Error       string `yaml:"error,omitempty" toml:"error,omitempty" json:"error,omitempty"`
	Success     string `yaml:"success,omitempty" toml:"success,omitempty" json:"success,omitempty"`
	Border      string `yaml:"border,omitempty" toml:"border,omitempty" json:"border,omitempty"`
}

var (
	embeddedOnce sync.Once
	embedded     Config
	embeddedErr  error
)

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default returns the parsed embedded configuration.
func Default() (Config, error) {
	embeddedOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedErr = errors.New("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &embedded); err != nil {
			embeddedErr = fmt.Errorf("decode embedded default config: %w", err)
			return
		}
		if embedded.UI.Theme == "" || len(embedded.Themes) == 0 {
			embeddedErr = errors.New("default config is missing required theme defaults")
		}
	})
	if embeddedErr != nil {
		return Config{}, embeddedErr
	}
	return embedded.clone(), nil
}

// Load returns the defaults merged with the file at path. An empty path
// returns the defaults. A missing file is an error only when required is true.
func Load(path string, required bool) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	user, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return Merge(cfg, user), nil
}

// Decode parses a config document. ext selects the format: ".toml" is TOML,
// ".yaml", ".yml" and "" are YAML.
func Decode(data []byte, ext string) (Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case "", ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedConfigFormat, ext)
	}
	return cfg, nil
}

// Merge overlays the non-zero fields of over onto base. Themes merge per
// field; a theme unknown to base starts from base's selected theme.
func Merge(base, over Config) Config {
	out := base.clone()
	setString(&out.App.Name, over.App.Name)
	setString(&out.App.Description, over.App.Description)

	setString(&out.Source.URL, over.Source.URL)
	setString(&out.Source.Timeout, over.Source.Timeout)
	setString(&out.Source.UserAgent, over.Source.UserAgent)

	setString(&out.Navigation.Path, over.Navigation.Path)
	setInt(&out.Navigation.MaxURLLength, over.Navigation.MaxURLLength)
	setInt(&out.Navigation.MaxEntries, over.Navigation.MaxEntries)
	if over.Navigation.Replace {
		out.Navigation.Replace = true
	}

	setString(&out.UI.Theme, over.UI.Theme)
	setString(&out.UI.Output, over.UI.Output)
	setString(&out.UI.Placeholder, over.UI.Placeholder)
	setString(&out.UI.EmptyText, over.UI.EmptyText)
	setString(&out.UI.LoadingText, over.UI.LoadingText)
	setString(&out.UI.ErrorText, over.UI.ErrorText)
	setInt(&out.UI.TitleWidth, over.UI.TitleWidth)
	setString(&out.UI.Highlight.Open, over.UI.Highlight.Open)
	setString(&out.UI.Highlight.Close, over.UI.Highlight.Close)

	if len(over.Themes) > 0 && out.Themes == nil {
		out.Themes = make(map[string]ThemeConfig, len(over.Themes))
	}
	for name, th := range over.Themes {
		existing, ok := out.Themes[name]
		if !ok {
			existing = base.Themes[base.UI.Theme]
		}
		out.Themes[name] = mergeTheme(existing, th)
	}
	return out
}

func mergeTheme(base, over ThemeConfig) ThemeConfig {
	setString(&base.HeaderFG, over.HeaderFG)
	setString(&base.HeaderBG, over.HeaderBG)
	setString(&base.SelectedFG, over.SelectedFG)
	setString(&base.SelectedBG, over.SelectedBG)
	setString(&base.HighlightFG, over.HighlightFG)
	setString(&base.HighlightBG, over.HighlightBG)
	setString(&base.Muted, over.Muted)
	setString(&base.Error, over.Error)
	setString(&base.Success, over.Success)
	setString(&base.Border, over.Border)
	return base
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func (c Config) clone() Config {
	out := c
	if c.Themes != nil {
		out.Themes = make(map[string]ThemeConfig, len(c.Themes))
		for k, v := range c.Themes {
			out.Themes[k] = v
		}
	}
	return out
}

// Theme returns the named theme, or the configured default when name is empty.
func (c Config) Theme(name string) (ThemeConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.UI.Theme
	}
	th, ok := c.Themes[name]
	if !ok {
		return ThemeConfig{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTheme, name, strings.Join(c.ThemeNames(), ", "))
	}
	return th, nil
}

// ThemeNames lists theme names in sorted order.
func (c Config) ThemeNames() []string {
	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
