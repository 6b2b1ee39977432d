package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// gormWriter forwards gorm's printf-style output to zerolog.
type gormWriter struct {
	level zerolog.Level
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	l := Logger()
	l.WithLevel(w.level).Str("component", "gorm").Msg(msg)
}

// NewGormLogger returns a gorm logger that writes through zerolog. Slow
// queries and errors are reported at the given gorm level.
func NewGormLogger(level gormlogger.LogLevel) gormlogger.Interface {
	w := gormWriter{level: zerolog.WarnLevel}
	if level == gormlogger.Info {
		w.level = zerolog.DebugLevel
	}
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// GormLevel maps an application log level onto gorm's coarser levels.
func GormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return gormlogger.Info
	case "disabled":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}
