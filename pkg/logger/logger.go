package logger

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// Init настраивает глобальный логгер. mode: production | development | пусто (логи выключены)
func Init(mode string) error {
	var (
		l   *zap.Logger
		err error
	)
	switch mode {
	case "production":
		l, err = zap.NewProduction()
	case "development":
		l, err = zap.NewDevelopment()
	case "":
		l = zap.NewNop()
	default:
		return fmt.Errorf("unknown log mode %q", mode)
	}
	if err != nil {
		return err
	}

	Set(l)
	return nil
}

// Set подменяет логгер (используется в тестах)
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// L текущий логгер
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Sync сбрасывает буферы, вызывать перед выходом
func Sync() {
	_ = L().Sync()
}

func Debug(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// WrapError дописывает к ошибке место вызова
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	_, f, l, _ := runtime.Caller(1)
	if message != "" {
		return fmt.Errorf("%s:%d: %s: %w", f, l, message, err)
	}
	return fmt.Errorf("%s:%d: %w", f, l, err)
}
