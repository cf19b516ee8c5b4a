package logging

// NullLogger drops everything. Tests and library callers that want a silent
// import use it.
type NullLogger struct{}

func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (*NullLogger) Verbose(string, ...interface{}) {}
func (*NullLogger) Info(string, ...interface{})    {}
func (*NullLogger) Warn(string, ...interface{})    {}
func (*NullLogger) Error(string, ...interface{})   {}
