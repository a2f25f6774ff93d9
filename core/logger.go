package core

// Logger logs messages and reports them to an external service when enabled.
// args may carry an error, a map[string]interface{} of extras and the current user.User.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})

	// Close flushes pending reports. The Logger must not be used afterwards.
	Close()
}
