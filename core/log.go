package core

// Logger is any leveled logger sink. Implementations may ship errors to a
// remote collector; args may carry an error, context maps or a user record.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
