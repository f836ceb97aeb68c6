package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/pkg/paths"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are the project settings file names, in lookup order.
var configNames = []string{
	".hookcfg.yml",
	".hookcfg.yaml",
	".hookcfg.toml",
}

// overrideNames are local, usually untracked, settings applied last.
var overrideNames = []string{
	".hookcfg.override.yml",
	".hookcfg.override.yaml",
	".hookcfg.override.toml",
}

// Load reads and parses a single settings file
func Load(path string) (*Settings, error) {
	settings, err := readSettings(path)
	if err != nil {
		return nil, err
	}

	settings.SetDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadFromBytes parses YAML settings from a byte array
func LoadFromBytes(data []byte) (*Settings, error) {
	settings, err := parseSettings(data, false)
	if err != nil {
		return nil, err
	}

	settings.SetDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadDefault loads settings with hierarchical merging starting from the
// current directory.
func LoadDefault() (*Settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}
	return LoadFrom(cwd)
}

// LoadFrom loads settings with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Settings, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return LoadFromWithLogger(startDir, logger)
}

// LoadFromWithLogger loads settings with hierarchical merging and logging:
// 1. Global settings ($HOOKCFG_HOME/config or ~/.config/hookcfg/config.yml) - base layer
// 2. Project settings (.hookcfg.yml, found upward) - overrides global
// 3. Local override (.hookcfg.override.yml) - overrides all
//
// Every layer is optional. A layer that fails to parse is an error, unlike
// a missing one.
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Settings, error) {
	layered, err := loadLayers(startDir, logger)
	if err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(layered.Final); err == nil {
			logger.Debugf("Merged settings:\n%s", string(data))
		}
	}
	return layered.Final, nil
}

// LoadLayered finds and loads all configuration layers (global, project, overrides)
// without merging them, for analysis purposes. It also computes the final merged config.
func LoadLayered(startDir string) (*LayeredConfig, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return loadLayers(startDir, logger)
}

func loadLayers(startDir string, logger *logrus.Logger) (*LayeredConfig, error) {
	layered := &LayeredConfig{
		FilePaths: make(map[ConfigSource]string),
	}

	defaults := &Settings{}
	defaults.SetDefaults()
	layered.Default = defaults

	if globalPath := paths.GlobalConfigFile(); globalPath != "" {
		if _, err := os.Stat(globalPath); err == nil {
			logger.WithField("path", globalPath).Debug("Loading global settings")
			global, err := readSettings(globalPath)
			if err != nil {
				return nil, err
			}
			layered.Global = global
			layered.FilePaths[SourceGlobal] = globalPath
		}
	}

	projectPath, err := FindConfigFile(startDir)
	switch {
	case err == nil:
		logger.WithField("path", projectPath).Debug("Loading project settings")
		project, err := readSettings(projectPath)
		if err != nil {
			return nil, err
		}
		layered.Project = project
		layered.FilePaths[SourceProject] = projectPath
	case errors.Is(err, errors.ErrCodeConfigNotFound):
		logger.WithField("start", startDir).Debug("No project settings found")
	default:
		return nil, err
	}

	overrideDir := startDir
	if projectPath != "" {
		overrideDir = filepath.Dir(projectPath)
	}
	for _, name := range overrideNames {
		overridePath := filepath.Join(overrideDir, name)
		if _, err := os.Stat(overridePath); err != nil {
			continue
		}
		logger.WithField("path", overridePath).Debug("Loading local override settings")
		override, err := readSettings(overridePath)
		if err != nil {
			return nil, err
		}
		layered.Overrides = append(layered.Overrides, OverrideSource{Path: overridePath, Settings: override})
	}

	final := &Settings{}
	if layered.Global != nil {
		final = mergeSettings(final, layered.Global)
	}
	if layered.Project != nil {
		final = mergeSettings(final, layered.Project)
	}
	for _, override := range layered.Overrides {
		final = mergeSettings(final, override.Settings)
	}

	final.SetDefaults()
	if err := final.Validate(); err != nil {
		return nil, err
	}
	if final.Manifest != "" && !filepath.IsAbs(final.Manifest) && projectPath != "" {
		final.Manifest = filepath.Join(filepath.Dir(projectPath), final.Manifest)
	}

	layered.Final = final
	return layered, nil
}

// FindConfigFile searches from startDir up to the filesystem root for a
// project settings file.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

// readSettings reads one layer without defaults or validation.
func readSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read settings file").
			WithDetail("path", path)
	}

	settings, err := parseSettings(data, strings.HasSuffix(path, ".toml"))
	if err != nil {
		if hookErr, ok := errors.As(err); ok {
			return nil, hookErr.WithDetail("path", path)
		}
		return nil, err
	}
	return settings, nil
}

// parseSettings expands ${VAR} references, then decodes YAML or TOML.
// TOML documents are decoded generically and re-read as YAML so both formats
// share the inline extension handling.
func parseSettings(data []byte, isTOML bool) (*Settings, error) {
	expanded := []byte(expandEnvVars(string(data)))

	if isTOML {
		var raw map[string]interface{}
		if err := toml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML settings")
		}
		converted, err := yaml.Marshal(raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to convert TOML settings")
		}
		expanded = converted
	}

	var settings Settings
	if err := yaml.Unmarshal(expanded, &settings); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML settings")
	}
	return &settings, nil
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
