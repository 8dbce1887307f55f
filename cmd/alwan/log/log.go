package log

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	logBuf *bufio.Writer
	logFd  *os.File
)

// lockedWriter serializes writes to the buffered log file.
type lockedWriter struct{}

func (lockedWriter) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	if logBuf == nil {
		return len(p), nil
	}
	return logBuf.Write(p)
}

// NewLogger creates a logger that writes to stdout and to a timestamped file
// in dir. name is appended to the file name when set.
func NewLogger(debug bool, dir, name string) (*slog.Logger, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating log directory: %w", err)
	}

	fileName := "Alwan-log-" + time.Now().Format("2006-01-02-15-04-05")
	if name != "" {
		fileName += "-" + name
	}
	fd, err := os.Create(filepath.Join(dir, fileName+".txt"))
	if err != nil {
		return nil, fmt.Errorf("error creating log file: %w", err)
	}

	mu.Lock()
	logFd = fd
	logBuf = bufio.NewWriterSize(fd, 4096)
	mu.Unlock()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, lockedWriter{}), &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.TimeOnly))
			}
			return a
		},
	})

	return slog.New(handler), nil
}

func FlushLog() {
	mu.Lock()
	defer mu.Unlock()
	if logBuf != nil {
		logBuf.Flush()
	}
}

func FlushAndClose() {
	mu.Lock()
	defer mu.Unlock()
	if logBuf != nil {
		logBuf.Flush()
		logBuf = nil
	}
	if logFd != nil {
		logFd.Close()
		logFd = nil
	}
}
