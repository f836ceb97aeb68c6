package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/hookcfg/errors"
)

var (
	formatPresets = map[string]bool{"": true, "default": true, "simple": true, "json": true}
	stderrModes   = map[string]bool{"": true, "auto": true, "always": true, "never": true}
)

// loggingSection mirrors the parts of the logging section that can be
// checked without importing the logging package.
type loggingSection struct {
	Level  string `yaml:"level"`
	Format struct {
		Preset             string `yaml:"preset"`
		StructuredToStderr string `yaml:"structured_to_stderr"`
	} `yaml:"format"`
}

// Validate checks every setting and reports all problems in one
// CONFIG_VALIDATION error.
func (s *Settings) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, "- "+fmt.Sprintf(format, args...))
	}

	if err := validatePath("manifest", s.Manifest); err != nil {
		add("%v", err)
	}
	if strings.TrimSpace(s.ShimBinary) == "" && s.ShimBinary != "" {
		add("shim_binary cannot be blank")
	}
	if _, err := patternmatcher.New(s.Ignore); err != nil {
		add("ignore: %v", err)
	}

	var logCfg loggingSection
	if err := s.UnmarshalExtension(SectionLogging, &logCfg); err != nil {
		add("%v", err)
	} else {
		if logCfg.Level != "" {
			if _, err := logrus.ParseLevel(logCfg.Level); err != nil {
				add("logging.level: %v", err)
			}
		}
		if !formatPresets[logCfg.Format.Preset] {
			add("logging.format.preset must be default, simple or json, got %q", logCfg.Format.Preset)
		}
		if !stderrModes[logCfg.Format.StructuredToStderr] {
			add("logging.format.structured_to_stderr must be auto, always or never, got %q", logCfg.Format.StructuredToStderr)
		}
	}

	if policy, err := s.PinPolicy(); err != nil {
		add("%v", err)
	} else {
		for key, constraint := range policy.Constraints {
			if _, err := version.NewConstraint(constraint); err != nil {
				add("pins.constraints[%s]: %v", key, err)
			}
		}
	}

	if rules, err := s.CommitRules(); err != nil {
		add("%v", err)
	} else {
		if rules.MaxHeaderLength < 0 {
			add("commit.max_header_length cannot be negative")
		}
		for i, t := range rules.Types {
			if strings.TrimSpace(t) == "" {
				add("commit.types[%d] cannot be empty", i)
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.ValidationFailed("", problems)
}

// validatePath validates that a path is appropriate for the current OS
func validatePath(fieldName, path string) error {
	if path == "" {
		return nil
	}

	// Check for Windows absolute paths on Unix systems
	if runtime.GOOS != "windows" && filepath.IsAbs(path) && strings.Contains(path, "\\") {
		return fmt.Errorf("%s contains Windows-style path on Unix system: %s", fieldName, path)
	}

	// Check for Unix absolute paths on Windows systems
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") {
		return fmt.Errorf("%s contains Unix-style path on Windows system: %s", fieldName, path)
	}

	return nil
}
