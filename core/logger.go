package core

// Logger is any service that can log app events and report them upstream.
// Args may carry structured context: an error, a map[string]interface{},
// or an identity the implementation knows how to attach.
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
