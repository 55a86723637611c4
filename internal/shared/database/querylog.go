package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	applogger "icetea/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// queryLogger sends gorm's query trace through the application logger so SQL
// lines share the same handler, level and format as the rest of the service.
type queryLogger struct {
	log           *applogger.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newQueryLogger(log *applogger.Logger, level logger.LogLevel, slowThreshold time.Duration) logger.Interface {
	return &queryLogger{log: log, level: level, slowThreshold: slowThreshold}
}

func (q *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *q
	cp.level = level
	return &cp
}

func (q *queryLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if q.level >= logger.Info {
		q.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if q.level >= logger.Warn {
		q.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if q.level >= logger.Error {
		q.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace is called once per statement. Not-found lookups are routine here and
// are not reported as errors.
func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && q.level >= logger.Error:
		sql, _ := fc()
		q.log.LogDBQuery(ctx, sql, elapsed, err)
	case q.slowThreshold > 0 && elapsed > q.slowThreshold && q.level >= logger.Warn:
		sql, _ := fc()
		q.log.LogSlowQuery(ctx, sql, elapsed)
	case q.level >= logger.Info:
		sql, _ := fc()
		q.log.LogDBQuery(ctx, sql, elapsed, nil)
	}
}
