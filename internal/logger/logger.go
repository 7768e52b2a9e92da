package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
)

// Leveled, colorized logger used across the project. Messages carry the
// caller's file:line so a warning from deep inside a refresh cycle can be
// traced without grepping.

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorOrange = "\033[38;5;208m"
)

type Logger struct {
	out   *log.Logger
	err   *log.Logger
	level LogLevel
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(INFO)
}

func New(level LogLevel) *Logger {
	return &Logger{
		out:   log.New(os.Stdout, "", 0),
		err:   log.New(os.Stderr, "", 0),
		level: level,
	}
}

// SetLevel adjusts the default logger's threshold.
func SetLevel(level LogLevel) {
	defaultLogger.level = level
}

// ParseLevel maps a config string to a level, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) color() string {
	switch l {
	case DEBUG:
		return colorBlue
	case INFO:
		return colorGreen
	case WARN:
		return colorYellow
	case ERROR:
		return colorOrange
	case FATAL:
		return colorRed
	default:
		return colorReset
	}
}

func (l *Logger) log(level LogLevel, msg string, v ...any) {
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	parts, jsonObjects := renderArgs(v...)
	if len(parts) > 0 {
		msg = msg + " " + strings.Join(parts, " ")
	}

	dst := l.out
	if level >= ERROR {
		dst = l.err
	}

	color := level.color()
	dst.Printf("[%s] %s:%d: %s%s%s", level, file, line, color, msg, colorReset)
	for _, obj := range jsonObjects {
		dst.Printf("[%s] %s:%d: %s%s%s", level, file, line, color, obj, colorReset)
	}
}

// renderArgs formats primitive arguments inline and turns anything else
// into an indented JSON block printed on its own lines.
func renderArgs(args ...any) ([]string, []string) {
	var parts []string
	var jsonObjects []string

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			parts = append(parts, "nil")
		case string:
			parts = append(parts, v)
		case error:
			parts = append(parts, v.Error())
		case float32:
			parts = append(parts, fmt.Sprintf("%.2f", v))
		case float64:
			parts = append(parts, fmt.Sprintf("%.2f", v))
		case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			parts = append(parts, fmt.Sprintf("%v", v))
		default:
			data, err := json.MarshalIndent(arg, "", "  ")
			if err != nil {
				parts = append(parts, fmt.Sprintf("%v", arg))
				continue
			}
			parts = append(parts, fmt.Sprintf("[%s]", reflect.TypeOf(arg)))
			jsonObjects = append(jsonObjects, string(data))
		}
	}
	return parts, jsonObjects
}

func Debug(msg string, v ...any) { defaultLogger.log(DEBUG, msg, v...) }
func Info(msg string, v ...any)  { defaultLogger.log(INFO, msg, v...) }
func Warn(msg string, v ...any)  { defaultLogger.log(WARN, msg, v...) }
func Error(msg string, v ...any) { defaultLogger.log(ERROR, msg, v...) }

func Fatal(msg string, v ...any) {
	defaultLogger.log(FATAL, msg, v...)
	os.Exit(1)
}
