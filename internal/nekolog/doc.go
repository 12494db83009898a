// Package nekolog configures the process-wide logrus standard logger every
// other package logs through, grounded on lazydocker's pkg/log.NewLogger:
// its formatter and level are chosen from config once, and For and
// ForContainer wrap it in .WithField(s)(...) to return a *logrus.Entry
// carrying contextual fields.
//
// Text formatting is the default, matching the CLI's plain stderr output;
// --json (or NEKO_LOG_JSON=1) switches to logrus.JSONFormatter so operators
// can pipe launcher output into a log aggregator. Verbose CLI output maps
// to logrus.DebugLevel.
package nekolog
