package gioimport

// Logger receives printf-style progress from every layer of an import.
// Implementations must be safe for concurrent use.
type Logger interface {
	// Verbose is shown only with --verbose: statements, reused rows, notices.
	Verbose(format string, args ...interface{})

	// Info reports run progress, e.g. one line per location.
	Info(format string, args ...interface{})

	// Warn reports tolerated anomalies such as a mixed-class group.
	Warn(format string, args ...interface{})

	Error(format string, args ...interface{})
}
