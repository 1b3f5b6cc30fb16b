package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

var (
	DebugLog *log.Logger
	InfoLog  *log.Logger
	WarnLog  *log.Logger
	ErrorLog *log.Logger
	logFile  *os.File
	level    = INFO
	mu       sync.Mutex
)

const (
	INFO = iota
	DEBUG
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

// ParseLevel maps a LOG_LEVEL value to a level constant. Unknown values fall back to INFO.
func ParseLevel(s string) int {
	if strings.EqualFold(strings.TrimSpace(s), "debug") {
		return DEBUG
	}
	return INFO
}

// InitLogger initializes the logger with a file output and console output.
// An empty filename logs to the console only.
func InitLogger(filename string, lvl int) error {
	if filename == "" {
		SetOutput(os.Stdout, os.Stderr)
		SetLevel(lvl)
		return nil
	}

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	mu.Lock()
	logFile = f
	mu.Unlock()

	SetOutput(io.MultiWriter(os.Stdout, f), io.MultiWriter(os.Stderr, f))
	SetLevel(lvl)
	return nil
}

// SetOutput points every level at the given writers. Tests use it to capture log lines.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	DebugLog = log.New(out, "DEBUG: ", flags)
	InfoLog = log.New(out, "INFO: ", flags)
	WarnLog = log.New(out, "WARN: ", flags)
	ErrorLog = log.New(errOut, "ERROR: ", flags)
}

// SetLevel switches between INFO and DEBUG output.
func SetLevel(lvl int) {
	mu.Lock()
	level = lvl
	mu.Unlock()
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func Init() {
	SetOutput(os.Stdout, os.Stderr)
}

func ensure() {
	mu.Lock()
	ready := InfoLog != nil
	mu.Unlock()
	if !ready {
		Init()
	}
}

func Debugf(format string, v ...interface{}) {
	ensure()
	mu.Lock()
	lvl := level
	mu.Unlock()
	if lvl < DEBUG {
		return
	}
	DebugLog.Output(2, fmt.Sprintf(format, v...))
}

func Infof(format string, v ...interface{}) {
	ensure()
	InfoLog.Output(2, fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	ensure()
	WarnLog.Output(2, fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	ensure()
	ErrorLog.Output(2, fmt.Sprintf(format, v...))
}
