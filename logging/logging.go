package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

type LogCategory string

const (
	META    LogCategory = "meta" // For logs about logging
	OSC_IN  LogCategory = "osc_in"
	OSC_OUT LogCategory = "osc_out"
	HTTP    LogCategory = "http"
	APP     LogCategory = "app" // For application-specific logs (i.e. business logic)
)

// Internal state for loggers per category
var (
	mu               *sync.RWMutex
	out              io.Writer
	loggers          map[LogCategory]*slog.Logger
	categoryLvls     map[LogCategory]*slog.LevelVar
	defaultLogLevels map[LogCategory]slog.Level
)

func init() {
	mu = new(sync.RWMutex)
	out = os.Stderr
	defaultLogLevels = map[LogCategory]slog.Level{
		META:    slog.LevelInfo,
		OSC_IN:  slog.LevelWarn,
		OSC_OUT: slog.LevelWarn,
		HTTP:    slog.LevelInfo,
		APP:     slog.LevelInfo,
	}
	loggers = map[LogCategory]*slog.Logger{}
	categoryLvls = make(map[LogCategory]*slog.LevelVar)
}

// SetOutput redirects all category loggers to w. Loggers already handed out
// by Get keep writing to the previous destination; call this before the
// first Get.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	loggers = map[LogCategory]*slog.Logger{}
}

// Get returns a slog.Logger that always has the "category" attribute set.
// Each category gets its own logger instance.
func Get(category LogCategory) *slog.Logger {
	mu.RLock()
	l, ok := loggers[category]
	mu.RUnlock()
	if ok {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	// Double-check after locking
	if l, ok := loggers[category]; ok {
		return l
	}
	// Create a new LevelVar for this category if it doesn't exist
	lvlVar, ok := categoryLvls[category]
	if !ok {
		lvlVar = new(slog.LevelVar)
		lvlVar.Set(defaultLogLevels[category])
		categoryLvls[category] = lvlVar
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: lvlVar,
	})
	catLogger := slog.New(handler).With("category", category)
	loggers[category] = catLogger
	return catLogger
}

func SetCategoryLevel(category LogCategory, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	lvlVar, ok := categoryLvls[category]
	if !ok {
		lvlVar = new(slog.LevelVar)
		categoryLvls[category] = lvlVar
	}
	lvlVar.Set(level)
}

// SetAllLevels applies level to every known category.
func SetAllLevels(level slog.Level) {
	for cat := range defaultLogLevels {
		SetCategoryLevel(cat, level)
	}
}
