package logger

import (
	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
)

type Logger = sdklogging.Logger

// Discard drops every record. Engines and servers built without a logger
// fall back to it.
type Discard struct{}

var _ Logger = Discard{}

func (Discard) Debug(string, ...any)  {}
func (Discard) Info(string, ...any)   {}
func (Discard) Warn(string, ...any)   {}
func (Discard) Error(string, ...any)  {}
func (Discard) Fatal(string, ...any)  {}
func (Discard) Debugf(string, ...any) {}
func (Discard) Infof(string, ...any)  {}
func (Discard) Warnf(string, ...any)  {}
func (Discard) Errorf(string, ...any) {}
func (Discard) Fatalf(string, ...any) {}

func (d Discard) With(...any) Logger { return d }

func NewNoOpLogger() Logger {
	return Discard{}
}

// EnsureLogger returns log, or a Discard logger when log is nil
func EnsureLogger(log Logger) Logger {
	if log == nil {
		return Discard{}
	}
	return log
}
