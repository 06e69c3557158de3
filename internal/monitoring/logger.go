package monitoring

import "log"

// Logf is the package-level diagnostic logger for the analysis pipeline.
// It defaults to log.Printf; SetLogger lets the host redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger, which is what tests generally want.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
