package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func observedGormLogger(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), level), logs
}

func TestGormLoggerTrace(t *testing.T) {
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT * FROM leases", 3 }

	t.Run("errors are logged", func(t *testing.T) {
		l, logs := observedGormLogger(gormlogger.Error)

		l.Trace(ctx, time.Now(), query, errors.New("connection reset"))

		assert.Equal(t, 1, logs.FilterMessage("query failed").Len())
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		l, logs := observedGormLogger(gormlogger.Error)

		l.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow queries logged at warn", func(t *testing.T) {
		l, logs := observedGormLogger(gormlogger.Warn)

		l.Trace(ctx, time.Now().Add(-time.Second), query, nil)

		assert.Equal(t, 1, logs.FilterMessage("slow query").Len())
	})

	t.Run("silent level suppresses everything", func(t *testing.T) {
		l, logs := observedGormLogger(gormlogger.Silent)

		l.Trace(ctx, time.Now(), query, errors.New("boom"))

		assert.Equal(t, 0, logs.Len())
	})
}

func TestGormLoggerLogMode(t *testing.T) {
	l, _ := observedGormLogger(gormlogger.Error)

	changed := l.LogMode(gormlogger.Info)

	assert.NotSame(t, l, changed)
	assert.Equal(t, gormlogger.Error, l.logLevel)
}
