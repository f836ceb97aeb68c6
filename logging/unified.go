package logging

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/hookcfg/theme"
)

// UnifiedLogger writes each message twice: a styled line for the user and
// a structured entry for the log sinks.
type UnifiedLogger struct {
	component  string
	pretty     *PrettyLogger
	structured *logrus.Entry
}

// NewUnifiedLogger creates a unified logger for a component.
func NewUnifiedLogger(component string) *UnifiedLogger {
	structured := NewLogger(component)
	// The caller is recorded by Log so it points at the call site.
	structured.Logger.SetReportCaller(false)

	return &UnifiedLogger{
		component:  component,
		pretty:     NewPrettyLogger(),
		structured: structured,
	}
}

func (u *UnifiedLogger) entry(msg string, level logrus.Level, icon string, fields logrus.Fields) *LogEntry {
	if fields == nil {
		fields = logrus.Fields{}
	}
	return &LogEntry{logger: u, msg: msg, level: level, icon: icon, fields: fields}
}

// Debug entries only reach the user when the logger runs at debug level.
func (u *UnifiedLogger) Debug(msg string) *LogEntry {
	return u.entry(msg, logrus.DebugLevel, "", nil)
}

func (u *UnifiedLogger) Info(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, "", nil)
}

func (u *UnifiedLogger) Warn(msg string) *LogEntry {
	return u.entry(msg, logrus.WarnLevel, theme.IconWarning, nil)
}

func (u *UnifiedLogger) Error(msg string) *LogEntry {
	return u.entry(msg, logrus.ErrorLevel, theme.IconError, nil)
}

// Success is an info entry tagged status=success.
func (u *UnifiedLogger) Success(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, theme.IconSuccess, logrus.Fields{"status": "success"})
}

// Skipped is an info entry tagged status=skipped.
func (u *UnifiedLogger) Skipped(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, theme.IconSkipped, logrus.Fields{"status": "skipped"})
}

// LogEntry accumulates options until Log writes it.
type LogEntry struct {
	logger     *UnifiedLogger
	msg        string
	level      logrus.Level
	fields     logrus.Fields
	icon       string
	prettyMsg  string
	prettyOnly bool
	structOnly bool
	noIcon     bool
	err        error
}

// Field adds a structured field. Fields never appear in the pretty line.
func (e *LogEntry) Field(key string, value interface{}) *LogEntry {
	e.fields[key] = value
	return e
}

// Fields adds multiple structured fields.
func (e *LogEntry) Fields(fields map[string]interface{}) *LogEntry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// Err attaches an error as the "error" field. A nil error is ignored.
func (e *LogEntry) Err(err error) *LogEntry {
	if err != nil {
		e.err = err
		e.fields["error"] = err.Error()
	}
	return e
}

// Icon overrides the default icon.
func (e *LogEntry) Icon(icon string) *LogEntry {
	e.icon = icon
	return e
}

// NoIcon suppresses the icon in pretty output.
func (e *LogEntry) NoIcon() *LogEntry {
	e.noIcon = true
	return e
}

// Pretty replaces the user-facing line. The structured message is unchanged.
func (e *LogEntry) Pretty(styled string) *LogEntry {
	e.prettyMsg = styled
	return e
}

// PrettyOnly skips structured output.
func (e *LogEntry) PrettyOnly() *LogEntry {
	e.prettyOnly = true
	return e
}

// StructuredOnly skips pretty output.
func (e *LogEntry) StructuredOnly() *LogEntry {
	e.structOnly = true
	return e
}

// Log writes the entry. The pretty line goes to the writer attached to ctx
// (see WithWriter), or the global output.
func (e *LogEntry) Log(ctx context.Context) {
	showPretty := !e.structOnly &&
		(e.level != logrus.DebugLevel || e.logger.structured.Logger.IsLevelEnabled(logrus.DebugLevel))
	if showPretty {
		fmt.Fprintln(GetWriter(ctx), e.prettyOutput())
	}

	if !e.prettyOnly {
		if pc, file, line, ok := runtime.Caller(1); ok {
			e.fields["file"] = fmt.Sprintf("%s:%d", file, line)
			if fn := runtime.FuncForPC(pc); fn != nil {
				e.fields["func"] = fn.Name()
			}
		}
		e.logger.structured.WithFields(e.fields).Log(e.level, e.msg)
	}
}

func (e *LogEntry) prettyOutput() string {
	if e.prettyMsg != "" {
		return e.prettyMsg
	}

	output := e.msg
	if !e.noIcon {
		icon := e.icon
		if icon == "" {
			icon = theme.IconBullet
		}
		output = icon + " " + e.msg
	}

	styles := e.logger.pretty.styles
	switch {
	case e.level == logrus.WarnLevel:
		return styles.Warning.Render(output)
	case e.level == logrus.ErrorLevel:
		return styles.Error.Render(output)
	case e.level == logrus.DebugLevel:
		return styles.Key.Render(output)
	case e.icon == theme.IconSuccess:
		return styles.Success.Render(output)
	case e.icon == theme.IconSkipped:
		return styles.Key.Render(output)
	}
	return output
}

// Component returns the component name for this logger.
func (u *UnifiedLogger) Component() string {
	return u.component
}

// WithStructured returns the underlying logrus entry.
func (u *UnifiedLogger) WithStructured() *logrus.Entry {
	return u.structured
}

// WithPretty returns the underlying PrettyLogger.
func (u *UnifiedLogger) WithPretty() *PrettyLogger {
	return u.pretty
}
