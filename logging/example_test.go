package logging_test

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/hookcfg/logging"
)

func ExampleNewLogger() {
	log := logging.NewLogger("plan")

	log.Debug("Resolved manifest path")
	log.WithFields(logrus.Fields{
		"stage": "pre-commit",
		"hooks": 5,
	}).Info("Plan computed")
	log.WithField("hook", "pylint").Warn("Hook does not apply to any file")
}

func ExampleNewLogger_configuration() {
	// Settings in .hookcfg.yml:
	//
	// logging:
	//   level: debug
	//   report_caller: true
	//   file:
	//     enabled: true
	//     format: json
	//   format:
	//     preset: simple
	//
	// HOOKCFG_LOG_LEVEL and HOOKCFG_LOG_CALLER override the file.
	log := logging.NewLogger("install")
	log.Info("Installing hook shims")
}

func ExampleUnifiedLogger() {
	ctx := logging.WithWriter(context.Background(), os.Stdout)
	ulog := logging.NewUnifiedLogger("example")

	ulog.Info("Manifest is valid").NoIcon().PrettyOnly().Log(ctx)
	// Output: Manifest is valid
}
