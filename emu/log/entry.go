package log

import (
	"sync"

	"gopkg.in/Sirupsen/logrus.v0"
)

// Context adds fields describing the emulator state to every log line (for
// instance the current frame).
type Context interface {
	AddLogContext(z *EntryZ)
}

var (
	ctxMu    sync.RWMutex
	contexts []Context
)

// AddContext registers c.
func AddContext(c Context) {
	ctxMu.Lock()
	defer ctxMu.Unlock()
	contexts = append(contexts, c)
}

// RemoveContext unregisters c.
func RemoveContext(c Context) {
	ctxMu.Lock()
	defer ctxMu.Unlock()
	for i := range contexts {
		if contexts[i] == c {
			contexts = append(contexts[:i:i], contexts[i+1:]...)
			return
		}
	}
}

func addContexts(z *EntryZ) {
	ctxMu.RLock()
	defer ctxMu.RUnlock()
	for _, c := range contexts {
		c.AddLogContext(z)
	}
}

// Entry is the printf-style counterpart of EntryZ, for messages outside of
// the hardware paths (configuration, start-up).
type Entry struct {
	mod Module
}

func (entry Entry) log() *logrus.Entry {
	var z EntryZ
	addContexts(&z)

	fields := make(logrus.Fields, z.zfidx+1)
	fields["_mod"] = modNames[entry.mod]
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	return logrus.StandardLogger().WithFields(fields)
}

func (entry Entry) Debugf(format string, args ...any) {
	if entry.mod.Enabled(DebugLevel) {
		entry.log().Debugf(format, args...)
	}
}

func (entry Entry) Infof(format string, args ...any) {
	if entry.mod.Enabled(InfoLevel) {
		entry.log().Infof(format, args...)
	}
}

func (entry Entry) Warnf(format string, args ...any) {
	if entry.mod.Enabled(WarnLevel) {
		entry.log().Warnf(format, args...)
	}
}

func (entry Entry) Errorf(format string, args ...any) {
	if entry.mod.Enabled(ErrorLevel) {
		entry.log().Errorf(format, args...)
	}
}

func (entry Entry) Fatalf(format string, args ...any) {
	if entry.mod.Enabled(FatalLevel) {
		entry.log().Fatalf(format, args...)
	}
}
