package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const permission = 0664

// Builder собирает zerolog.Logger: stdout по умолчанию, либо writer, либо файл.
type Builder struct {
	writer io.Writer
	path   string
	level  string
}

func New() *Builder {
	return &Builder{}
}

func (b *Builder) FromPath(path string) *Builder {
	b.path = path
	return b
}

func (b *Builder) FromWriter(w io.Writer) *Builder {
	b.writer = w
	return b
}

func (b *Builder) WithLevel(level string) *Builder {
	b.level = level
	return b
}

// Logger - логгер и файл, в который он пишет (если есть).
type Logger struct {
	zerolog.Logger
	file *os.File
}

// Close закрывает файл лога. Для stdout ничего не делает.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (b *Builder) Make() (*Logger, error) {
	l := &Logger{}
	var w io.Writer = os.Stdout
	if b.writer != nil {
		w = b.writer
	}
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		w = zerolog.SyncWriter(f)
	}

	level := zerolog.InfoLevel
	if b.level != "" {
		parsed, err := zerolog.ParseLevel(b.level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", b.level, err)
		}
		level = parsed
	}

	l.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return l, nil
}
