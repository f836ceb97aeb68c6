package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/hookcfg/config"
	"github.com/grovetools/hookcfg/pkg/paths"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// loadConfig reads the logging section of the merged settings.
	loadConfig = func() Config {
		var logCfg Config
		cfg, err := config.LoadDefault()
		if err != nil {
			return logCfg
		}
		if err := cfg.UnmarshalExtension(config.SectionLogging, &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
		return logCfg
	}

	// stderrIsTerminal is replaced in tests.
	stderrIsTerminal = func() bool {
		return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	}
)

// NewLogger returns the logger for a component, building it from the
// logging settings on first use.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	entry := newLogger(component, loadConfig())
	loggers[component] = entry
	return entry
}

// SetLevel changes the level of every logger created so far. It backs the
// --verbose flag.
func SetLevel(level logrus.Level) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, entry := range loggers {
		entry.Logger.SetLevel(level)
	}
}

func newLogger(component string, logCfg Config) *logrus.Entry {
	logger := logrus.New()

	levelStr := "info"
	if env := os.Getenv("HOOKCFG_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("HOOKCFG_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	if logCfg.File.Enabled {
		path := logCfg.File.Path
		if path == "" {
			path = defaultLogFile(component)
		}
		if hook, err := newFileHook(expandPath(path), logCfg.File.Format); err != nil {
			logger.Warnf("Failed to open log file %s: %v", path, err)
		} else {
			logger.AddHook(hook)
		}
	}

	if shouldLogToStderr(logCfg.Format.StructuredToStderr, logger.GetLevel()) {
		logger.SetOutput(GetGlobalOutput())
	} else {
		logger.SetOutput(io.Discard)
	}

	return logger.WithField("component", component)
}

// shouldLogToStderr resolves the structured_to_stderr mode.
func shouldLogToStderr(mode string, level logrus.Level) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		isDebug := os.Getenv("HOOKCFG_DEBUG") == "1" || level >= logrus.DebugLevel
		return isDebug || !stderrIsTerminal()
	}
}

func defaultLogFile(component string) string {
	dir := paths.ConfigDir()
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "logs", fmt.Sprintf("%s-%s.log", component, time.Now().Format("2006-01-02")))
}

// fileHook writes every entry to a file with its own formatter, so the
// file can hold JSON while stderr stays human readable.
type fileHook struct {
	mu        sync.Mutex
	writer    io.Writer
	formatter logrus.Formatter
}

func newFileHook(path, format string) (*fileHook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	var formatter logrus.Formatter = &TextFormatter{DisableColors: true}
	if format == "json" {
		formatter = &logrus.JSONFormatter{}
	}
	return &fileHook{writer: file, formatter: formatter}, nil
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(line)
	return err
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
