package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/google/cel-go/cel"
	"github.com/scenezero/storyboard"
)

var (
	homePath       string
	configHomePath string
	dataHomePath   string
	stateHomePath  string
)

type Config struct {
	// Theme name applied to every exported slide
	Theme string `yaml:"theme,omitempty" json:"theme,omitempty"`
	// Path to a themes YAML file; defaults to themes.yml in the config directory
	ThemesFile string `yaml:"themesFile,omitempty" json:"themesFile,omitempty"`
	// External command used to snapshot slides instead of headless Chrome
	SnapshotCommand string `yaml:"snapshotCommand,omitempty" json:"snapshotCommand,omitempty"`
	// Conditions for default
	Defaults []DefaultCondition `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

type DefaultCondition struct {
	If     string `json:"if"`               // condition to check
	Theme  string `json:"theme,omitempty"`  // theme name to apply if condition is true
	Skip   *bool  `json:"skip,omitempty"`   // whether to skip the slide if condition is true
	Raster *bool  `json:"raster,omitempty"` // whether to force raster export if condition is true
}

func init() {
	var err error
	homePath, err = os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}
}

// Load loads the configuration from the config file.
// It searches for config files in the following order:
// 1. $XDG_CONFIG_HOME/storyboard/config-{profile}.yml
// 2. $XDG_CONFIG_HOME/storyboard/config.yml
// If no config file is found, it returns an empty Config struct.
func Load(profile string) (*Config, error) {
	var configBasePaths []string
	if profile != "" {
		configBasePaths = append(configBasePaths, filepath.Join(configPath(), fmt.Sprintf("config-%s", profile)))
	}
	configBasePaths = append(configBasePaths, filepath.Join(configPath(), "config"))
	cfg := &Config{}
	for _, basePath := range configBasePaths {
		for _, ext := range []string{".yml", ".yaml"} {
			configPath := basePath + ext
			if b, err := os.ReadFile(configPath); err == nil {
				if err := yaml.Unmarshal(b, cfg); err != nil {
					return nil, fmt.Errorf("failed to unmarshal config: %w", err)
				}
				return cfg, nil
			}
		}
	}
	// If no config file is found, return an empty config
	return cfg, nil
}

// SlideDefaults is the resolved per-slide configuration after evaluating
// every matching condition in order.
type SlideDefaults struct {
	Theme  string
	Skip   bool
	Raster bool
}

// Resolve evaluates the default conditions against one slide. Conditions see
// the variables `page` (1-origin slide id) and `title`; later matches
// override earlier ones.
func (c *Config) Resolve(slide *storyboard.Slide) (*SlideDefaults, error) {
	d := &SlideDefaults{Theme: c.Theme}
	if len(c.Defaults) == 0 {
		return d, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("page", cel.IntType),
		cel.Variable("title", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	vars := map[string]any{
		"page":  slide.ID,
		"title": slide.Title,
	}
	for _, cond := range c.Defaults {
		ast, issues := env.Compile(cond.If)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("failed to compile condition %q: %w", cond.If, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to create program for condition %q: %w", cond.If, err)
		}
		out, _, err := prg.Eval(vars)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate condition %q: %w", cond.If, err)
		}
		matched, ok := out.Value().(bool)
		if !ok || !matched {
			continue
		}
		if cond.Theme != "" {
			d.Theme = cond.Theme
		}
		if cond.Skip != nil {
			d.Skip = *cond.Skip
		}
		if cond.Raster != nil {
			d.Raster = *cond.Raster
		}
	}
	return d, nil
}

// ThemesPath returns the path of the themes file.
func (c *Config) ThemesPath() string {
	if c.ThemesFile != "" {
		return c.ThemesFile
	}
	return filepath.Join(configPath(), "themes.yml")
}

// configPath returns the path to the configuration directory.
func configPath() string {
	if configHomePath != "" {
		return configHomePath
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		configHomePath = filepath.Join(v, "storyboard")
	} else {
		configHomePath = filepath.Join(homePath, ".config", "storyboard")
	}
	return configHomePath
}

// DataHomePath returns the path to the data home directory.
func DataHomePath() string {
	if dataHomePath != "" {
		return dataHomePath
	}
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		dataHomePath = filepath.Join(v, "storyboard")
	} else {
		dataHomePath = filepath.Join(homePath, ".local", "share", "storyboard")
	}
	return dataHomePath
}

func StateHomePath() string {
	if stateHomePath != "" {
		return stateHomePath
	}
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		stateHomePath = filepath.Join(v, "storyboard")
	} else {
		stateHomePath = filepath.Join(homePath, ".local", "state", "storyboard")
	}
	return stateHomePath
}
