package logging

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// impl fans every entry at or above its level out to all appenders. A sublogger starts with a
// copy of its parent's appenders and level; later changes to either side stay local.
type impl struct {
	name  string
	level AtomicLevel
	inUTC bool

	appenders []Appender
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return &impl{
		name:      name,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: append([]Appender(nil), imp.appenders...),
	}
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

// emit builds and writes one entry. It must be called directly from the exported leveled
// methods so that the caller lookup lands on the user's call site.
func (imp *impl) emit(level Level, msg string, fields []zapcore.Field) {
	if level < imp.level.Get() {
		return
	}
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     callerAt(3),
	}
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	for _, appender := range imp.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// pairsToFields turns alternating keys and values into zap fields. A trailing key without a
// value is kept with an error as its value.
func pairsToFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for idx := 0; idx < len(keysAndValues); idx += 2 {
		key := fmt.Sprint(keysAndValues[idx])
		if idx+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[idx+1]))
	}
	return fields
}

func (imp *impl) Debug(args ...interface{}) { imp.emit(DEBUG, fmt.Sprint(args...), nil) }

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.emit(DEBUG, fmt.Sprintf(template, args...), nil)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.emit(DEBUG, msg, pairsToFields(keysAndValues))
}

func (imp *impl) Info(args ...interface{}) { imp.emit(INFO, fmt.Sprint(args...), nil) }

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.emit(INFO, fmt.Sprintf(template, args...), nil)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.emit(INFO, msg, pairsToFields(keysAndValues))
}

func (imp *impl) Warn(args ...interface{}) { imp.emit(WARN, fmt.Sprint(args...), nil) }

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.emit(WARN, fmt.Sprintf(template, args...), nil)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.emit(WARN, msg, pairsToFields(keysAndValues))
}

func (imp *impl) Error(args ...interface{}) { imp.emit(ERROR, fmt.Sprint(args...), nil) }

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.emit(ERROR, fmt.Sprintf(template, args...), nil)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.emit(ERROR, msg, pairsToFields(keysAndValues))
}

// callerAt returns the call site skip frames above itself, e.g. "logging/impl_test.go:36" once
// rendered.
func callerAt(skip int) zapcore.EntryCaller {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return zapcore.EntryCaller{}
	}
	caller := zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
