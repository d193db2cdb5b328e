// Package config loads the optional weft.yaml or weft.toml project file
// and resolves defaults for the weft CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// File names searched in a project root, in order of preference.
const (
	YAMLFile = "weft.yaml"
	TOMLFile = "weft.toml"
)

// Config represents the project file.
type Config struct {
	App    AppConfig    `yaml:"app" toml:"app"`
	Window WindowConfig `yaml:"window" toml:"window"`
	Log    LogConfig    `yaml:"log" toml:"log"`
	Debug  DebugConfig  `yaml:"debug" toml:"debug"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name   string   `yaml:"name,omitempty" toml:"name,omitempty"`
	Assets string   `yaml:"assets,omitempty" toml:"assets,omitempty"`
	Image  string   `yaml:"image,omitempty" toml:"image,omitempty"`
	Items  []string `yaml:"items,omitempty" toml:"items,omitempty"`
}

// WindowConfig sets the surface size in pixels.
type WindowConfig struct {
	Width  int `yaml:"width,omitempty" toml:"width,omitempty"`
	Height int `yaml:"height,omitempty" toml:"height,omitempty"`
}

// LogConfig sets the log level: debug, info, warn, or error.
type LogConfig struct {
	Level string `yaml:"level,omitempty" toml:"level,omitempty"`
}

// DebugConfig enables the inspector and frame tracing.
type DebugConfig struct {
	Addr        string `yaml:"addr,omitempty" toml:"addr,omitempty"`
	TraceFrames int    `yaml:"trace_frames,omitempty" toml:"trace_frames,omitempty"`
	SlowFrameMs int    `yaml:"slow_frame_ms,omitempty" toml:"slow_frame_ms,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ConfigFile string
	ModulePath string
	AppName    string
	AssetsDir  string
	Image      string
	Items      []string
	Width      int
	Height     int
	LogLevel   slog.Level
	DebugAddr  string
	TraceSize  int
	SlowFrame  int
}

// Defaults applied by Resolve.
const (
	DefaultWidth       = 800
	DefaultHeight      = 600
	DefaultTraceFrames = 120
	DefaultSlowFrameMs = 16
)

// DefaultItems populate the demo list when the project file names none.
var DefaultItems = []string{"alpha", "beta", "gamma"}

// LoadOptional reads weft.yaml or weft.toml from dir if present and returns
// the parsed file with the path it came from. Having both is an error.
func LoadOptional(dir string) (*Config, string, error) {
	var found []string
	for _, name := range []string{YAMLFile, TOMLFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			found = append(found, name)
		}
	}
	switch len(found) {
	case 0:
		return &Config{}, "", nil
	case 2:
		return nil, "", fmt.Errorf("both %s and %s exist in %s; keep one", YAMLFile, TOMLFile, dir)
	}

	path := filepath.Join(dir, found[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", found[0], err)
	}

	var cfg Config
	if found[0] == TOMLFile {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", found[0], err)
	}
	return &cfg, path, nil
}

// Resolve loads the project file in dir (if present) and resolves
// defaults. A missing go.mod is allowed; the app name then comes from the
// directory name.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg, file, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	level, err := ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	if cfg.Window.Width < 0 || cfg.Window.Height < 0 {
		return nil, fmt.Errorf("window size must not be negative (got %dx%d)", cfg.Window.Width, cfg.Window.Height)
	}

	r := &Resolved{
		Root:       dir,
		ConfigFile: file,
		ModulePath: modulePath,
		AppName:    appName,
		Image:      strings.TrimSpace(cfg.App.Image),
		Items:      cfg.App.Items,
		Width:      orDefault(cfg.Window.Width, DefaultWidth),
		Height:     orDefault(cfg.Window.Height, DefaultHeight),
		LogLevel:   level,
		DebugAddr:  strings.TrimSpace(cfg.Debug.Addr),
		TraceSize:  orDefault(cfg.Debug.TraceFrames, DefaultTraceFrames),
		SlowFrame:  orDefault(cfg.Debug.SlowFrameMs, DefaultSlowFrameMs),
	}
	if len(r.Items) == 0 {
		r.Items = DefaultItems
	}
	if assets := strings.TrimSpace(cfg.App.Assets); assets != "" {
		if !filepath.IsAbs(assets) {
			assets = filepath.Join(dir, assets)
		}
		r.AssetsDir = assets
	}
	if r.Image != "" && r.AssetsDir == "" {
		return nil, fmt.Errorf("app.image %q requires app.assets", r.Image)
	}
	return r, nil
}

// ParseLevel maps a level name to a slog.Level. An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	name = strings.TrimSpace(name)
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", name, err)
	}
	return level, nil
}

// FindProjectRoot walks up from the current directory to find go.mod or a
// weft project file. If neither is found, the current directory is the
// root.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindProjectRootFrom(dir), nil
}

// FindProjectRootFrom is FindProjectRoot starting at start.
func FindProjectRootFrom(start string) string {
	dir := start
	for {
		for _, name := range []string{YAMLFile, TOMLFile, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		if modName, _, ok := module.SplitPathVersion(modulePath); ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "weft_app"
	}
	return base
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
