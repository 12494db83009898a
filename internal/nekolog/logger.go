package nekolog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Options controls how Configure sets up the package-level logrus logger.
type Options struct {
	// JSON switches the formatter to logrus.JSONFormatter. Corresponds to
	// the CLI's --json flag / NEKO_LOG_JSON=1.
	JSON bool
	// Verbose maps to logrus.DebugLevel; otherwise logrus.InfoLevel.
	Verbose bool
}

// Configure sets up logrus.StandardLogger() once at process start. Every
// other package logs through the same global logger via logrus.WithField
// et al., so this is the single place formatter/level decisions live.
func Configure(opts Options) {
	if opts.JSON || os.Getenv("NEKO_LOG_JSON") == "1" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// For returns an Entry tagged with component, the unit of the codebase
// emitting the log line (e.g. "launcher", "allocator", "profile").
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

// ForContainer returns an Entry tagged with both component and the
// container name the log line concerns.
func ForContainer(component, container string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"component": component,
		"container": container,
	})
}
