package core

// Actor identifies the authenticated caller for error reporting.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// Logger is any service that can log app messages at the usual levels.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
