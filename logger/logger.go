package logger

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bundler/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	SolLogger, JitoLogger, GlobalLogger *slog.Logger
	consoleEnabled                      = true
	level                               = new(slog.LevelVar)

	mu                      sync.Mutex
	globalLJ, solLJ, jitoLJ *lumberjack.Logger
)

func newFileWriter(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(config.LogPath, name+".log"),
		MaxSize:    config.LOG_MAX_SIZE_MB,
		MaxBackups: config.LOG_MAX_BACKUPS,
		MaxAge:     config.LOG_MAX_AGE_DAYS,
	}
}

// SetConsoleEnabled toggles the stdout copy of every logger.
func SetConsoleEnabled(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	consoleEnabled = enabled
	resetLoggers()
}

// SetLevel accepts debug, info, warn or error. Unknown names keep the current level.
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}
}

// InitLogs opens the per-command sol and jito log files.
func InitLogs(cmdName string) {
	ensureLogDir()
	ts := time.Now().Format("20060102150405")

	mu.Lock()
	defer mu.Unlock()
	closeDomainWriters()
	solLJ = newFileWriter(fmt.Sprintf("bundler_%s_%s_sol", ts, cmdName))
	jitoLJ = newFileWriter(fmt.Sprintf("bundler_%s_%s_jito", ts, cmdName))
	resetLoggers()
}

func init() {
	ensureLogDir()
	ts := time.Now().Format("20060102150405")
	globalLJ = newFileWriter(fmt.Sprintf("bundler_%s_global", ts))
	// Domain loggers fall back to the global file until InitLogs is called
	resetLoggers()
}

func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	if globalLJ != nil {
		_ = globalLJ.Close()
	}
	closeDomainWriters()
}

func closeDomainWriters() {
	if solLJ != nil {
		_ = solLJ.Close()
	}
	if jitoLJ != nil {
		_ = jitoLJ.Close()
	}
}

func ensureLogDir() {
	if err := os.MkdirAll(config.LogPath, 0o755); err != nil {
		log.Fatal(err)
	}
}

func newHandler(fileWriter io.Writer) slog.Handler {
	w := fileWriter
	if consoleEnabled {
		w = io.MultiWriter(os.Stdout, fileWriter)
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
}

func resetLoggers() {
	GlobalLogger = slog.New(newHandler(globalLJ))
	if solLJ != nil {
		SolLogger = slog.New(newHandler(solLJ))
	} else {
		SolLogger = GlobalLogger.With("domain", "sol")
	}
	if jitoLJ != nil {
		JitoLogger = slog.New(newHandler(jitoLJ))
	} else {
		JitoLogger = GlobalLogger.With("domain", "jito")
	}
}
