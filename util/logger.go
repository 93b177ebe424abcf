package util

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

type Logger interface {
	LogInfo(data string)
	LogWarning(data string)
	LogError(data string)
	Highlight(data string)
	Raw(data string)
	WithField(key string, value interface{}) Logger
}

type Log struct {
	entry   *logrus.Entry
	out     io.Writer
	noColor bool
}

// NewLogger logs to fileName, or to stderr when fileName is empty.
func NewLogger(fileName string, noColor bool) (*Log, error) {
	if len(fileName) == 0 {
		return NewLoggerTo(os.Stderr, noColor), nil
	}

	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open log file")
	}
	// Log files never get escape sequences.
	return NewLoggerTo(logFile, true), nil
}

func NewLoggerTo(w io.Writer, noColor bool) *Log {
	l := logrus.New()
	l.Out = w
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors: noColor,
		FullTimestamp: true,
	})
	return &Log{
		entry:   logrus.NewEntry(l),
		out:     w,
		noColor: noColor,
	}
}

func (l *Log) LogInfo(data string) {
	l.entry.Info(data)
}

func (l *Log) LogWarning(data string) {
	l.entry.Warn(data)
}

func (l *Log) LogError(data string) {
	l.entry.Error(data)
}

// Highlight writes data verbatim, wrapped in the crash highlight color.
func (l *Log) Highlight(data string) {
	if l.noColor {
		io.WriteString(l.out, data+"\n")
		return
	}
	io.WriteString(l.out, pterm.FgRed.Sprint(data)+"\n")
}

// Raw writes data as is, for multi-line text such as debugger sessions.
func (l *Log) Raw(data string) {
	if !strings.HasSuffix(data, "\n") {
		data += "\n"
	}
	io.WriteString(l.out, data)
}

func (l *Log) WithField(key string, value interface{}) Logger {
	return &Log{
		entry:   l.entry.WithField(key, value),
		out:     l.out,
		noColor: l.noColor,
	}
}
