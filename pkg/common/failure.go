package common

import (
	"errors"
	"fmt"
)

// Sentinel conditions shared by every package. Callers match them with errors.Is.
var (
	// ErrInvalidArgument reports a violated precondition: out of order
	// sectors or frames, misaligned buffer offsets, out of range bit widths.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEndOfStream reports a buffer exhausted in the middle of a read.
	ErrEndOfStream = errors.New("end of stream")

	// ErrStructuralMismatch reports a sector that failed classification checks.
	ErrStructuralMismatch = errors.New("structural mismatch")
)

// Level is the severity a Failure is logged at.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// Message is a catalog key plus its format arguments. It renders both as the
// fixed English diagnostic text and as display text in the active language.
type Message struct {
	Key  string
	Args []interface{}
}

// NewMessage creates a message for the given catalog key.
func NewMessage(key string, args ...interface{}) Message {
	return Message{Key: key, Args: args}
}

// English returns the non-localized diagnostic form of the message.
func (m Message) English() string {
	return englishTranslator().Format(m.Key, m.Args...)
}

// Localized returns the message in the language selected with SetLanguage.
func (m Message) Localized() string {
	return activeTranslator().Format(m.Key, m.Args...)
}

func (m Message) String() string {
	return m.English()
}

// LogSink receives failures and messages at a given severity.
type LogSink interface {
	Log(level Level, msg Message, cause error)
}

// StdLogSink writes to the standard logger through LogDebug, LogInfo,
// LogWarn and LogError.
type StdLogSink struct{}

// Log implements LogSink.
func (StdLogSink) Log(level Level, msg Message, cause error) {
	text := msg.English()
	if cause != nil {
		text = fmt.Sprintf("%s: %v", text, cause)
	}
	switch level {
	case LevelDebug:
		LogDebug(text)
	case LevelInfo:
		LogInfo(text)
	case LevelWarn:
		LogWarn(text)
	default:
		LogError(text)
	}
}

// Failure is an error carrying a severity and a localizable message. It
// records whether it was already logged when it was created so layers that
// propagate it do not log it a second time.
type Failure struct {
	level  Level
	msg    Message
	cause  error
	logged bool
}

// NewFailure creates a failure that has not been logged yet. The layer that
// finally handles it is expected to call Log.
func NewFailure(level Level, msg Message, cause error) *Failure {
	return &Failure{level: level, msg: msg, cause: cause}
}

// NewLoggedFailure logs the failure to sink immediately and marks it as logged.
func NewLoggedFailure(sink LogSink, level Level, msg Message, cause error) *Failure {
	f := &Failure{level: level, msg: msg, cause: cause}
	if sink != nil {
		sink.Log(level, msg, cause)
		f.logged = true
	}
	return f
}

// WasLogged reports if the failure was logged during construction.
func (f *Failure) WasLogged() bool {
	return f.logged
}

// Log dispatches the failure to sink at its stored severity with its cause.
func (f *Failure) Log(sink LogSink) {
	sink.Log(f.level, f.msg, f.cause)
}

// Level returns the severity of the failure.
func (f *Failure) Level() Level {
	return f.level
}

// SourceMessage returns the message the failure was created with.
func (f *Failure) SourceMessage() Message {
	return f.msg
}

// LocalizedMessage returns the display form of the message.
func (f *Failure) LocalizedMessage() string {
	return f.msg.Localized()
}

// Error returns the English diagnostic form of the message.
func (f *Failure) Error() string {
	return f.msg.English()
}

// Unwrap returns the underlying cause, if any.
func (f *Failure) Unwrap() error {
	return f.cause
}

// AsFailure returns the *Failure in err's chain, or wraps err in an unlogged
// error-level failure carrying fallback.
func AsFailure(err error, fallback Message) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return NewFailure(LevelError, fallback, err)
}
