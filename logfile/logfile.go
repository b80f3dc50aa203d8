// Package logfile provides per-component append-only log files. Each logger
// writes timestamped lines to its own file; an older file for the same
// logger name is moved into an Archive/ subdirectory on construction.
package logfile

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	fileStampLayout = "020106_150405"
	lineStampLayout = "02/01/06 15:04:05"
)

// Logger is an append-only text sink for one component. Write failures are
// reported on the process log and swallowed; they never reach the caller.
type Logger struct {
	mu   sync.Mutex
	name string
	path string
	f    *os.File
}

// New creates a logger named name under dir. Any existing log file for the
// same name is archived first.
func New(dir, name string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if err := archiveExisting(dir, name); err != nil {
		log.Printf("logfile: archive %s: %v", name, err)
	}

	filename := time.Now().Format(fileStampLayout) + "-" + name + ".txt"
	path := filepath.Join(dir, filename)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := &Logger{name: name, path: path, f: f}
	fmt.Fprintf(f, "==== Log started at [%s] ====\n", time.Now().Format(lineStampLayout))
	return l, nil
}

// archiveExisting moves prior "*-name.txt" files into dir/Archive/.
func archiveExisting(dir, name string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	suffix := "-" + name + ".txt"
	archiveDir := filepath.Join(dir, "Archive")
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		if err := os.MkdirAll(archiveDir, 0755); err != nil {
			return err
		}
		old := filepath.Join(dir, entry.Name())
		if err := os.Rename(old, filepath.Join(archiveDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Printf appends one timestamped record: "[dd/MM/yy HH:mm:ss] message".
func (l *Logger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return
	}
	line := fmt.Sprintf("[%s] %s\n", time.Now().Format(lineStampLayout), fmt.Sprintf(format, args...))
	if _, err := l.f.WriteString(line); err != nil {
		log.Printf("logfile: write %s: %v", l.name, err)
	}
}

// Name returns the logger name.
func (l *Logger) Name() string { return l.name }

// Path returns the backing file path.
func (l *Logger) Path() string { return l.path }

// Close flushes and closes the backing file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
