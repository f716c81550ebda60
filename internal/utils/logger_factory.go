package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	logDirectoryCreationTemplateConstant = "unable to create log directory %s"
	logFileMaximumSizeMegabytesConstant  = 10
	logFileMaximumBackupsConstant        = 3
	logFileMaximumAgeDaysConstant        = 14
	logDirectoryPermissionsConstant      = 0o755
	timestampKeyConstant                 = "ts"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates the console encodings.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// LoggerOutputs bundles the diagnostic logger with the log file it may hold open.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	fileWriter       *lumberjack.Logger
}

// Close releases the rotating log file, when one was configured.
func (outputs LoggerOutputs) Close() error {
	if outputs.fileWriter == nil {
		return nil
	}
	return outputs.fileWriter.Close()
}

// LoggerFactory builds loggers that write to a console sink, stderr unless overridden,
// so that command output on stdout stays pipeable.
type LoggerFactory struct {
	consoleSink zapcore.WriteSyncer
}

// NewLoggerFactory constructs a factory writing console logs to stderr.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{consoleSink: zapcore.Lock(os.Stderr)}
}

// NewLoggerFactoryWithSink constructs a factory writing console logs to writer.
func NewLoggerFactoryWithSink(writer io.Writer) *LoggerFactory {
	return &LoggerFactory{consoleSink: zapcore.Lock(zapcore.AddSync(writer))}
}

// CreateLogger produces a console-only logger.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	outputs, creationError := factory.CreateLoggerOutputs(requestedLogLevel, requestedLogFormat, "")
	if creationError != nil {
		return nil, creationError
	}
	return outputs.DiagnosticLogger, nil
}

// CreateLoggerOutputs produces a console logger and, when logFilePath is set, tees every
// entry into a rotating JSON log file at the same level.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat, logFilePath string) (LoggerOutputs, error) {
	zapLogLevel, levelExists := logLevelMapping[LogLevel(normalizeSetting(string(requestedLogLevel)))]
	if !levelExists {
		return LoggerOutputs{}, errors.Newf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoderConfiguration := zap.NewProductionEncoderConfig()
	encoderConfiguration.TimeKey = timestampKeyConstant
	encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEncoder, encoderError := newConsoleEncoder(LogFormat(normalizeSetting(string(requestedLogFormat))), encoderConfiguration)
	if encoderError != nil {
		return LoggerOutputs{}, errors.Wrapf(encoderError, unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	levelEnabler := zap.NewAtomicLevelAt(zapLogLevel)
	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, factory.sink(), levelEnabler)}

	outputs := LoggerOutputs{}
	if trimmedLogFilePath := strings.TrimSpace(logFilePath); len(trimmedLogFilePath) > 0 {
		logDirectory := filepath.Dir(trimmedLogFilePath)
		if directoryError := os.MkdirAll(logDirectory, logDirectoryPermissionsConstant); directoryError != nil {
			return LoggerOutputs{}, errors.Wrapf(directoryError, logDirectoryCreationTemplateConstant, logDirectory)
		}
		outputs.fileWriter = &lumberjack.Logger{
			Filename:   trimmedLogFilePath,
			MaxSize:    logFileMaximumSizeMegabytesConstant,
			MaxBackups: logFileMaximumBackupsConstant,
			MaxAge:     logFileMaximumAgeDaysConstant,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfiguration), zapcore.AddSync(outputs.fileWriter), levelEnabler))
	}

	outputs.DiagnosticLogger = zap.New(zapcore.NewTee(cores...))
	return outputs, nil
}

func (factory *LoggerFactory) sink() zapcore.WriteSyncer {
	if factory == nil || factory.consoleSink == nil {
		return zapcore.Lock(os.Stderr)
	}
	return factory.consoleSink
}

func newConsoleEncoder(format LogFormat, encoderConfiguration zapcore.EncoderConfig) (zapcore.Encoder, error) {
	switch format {
	case LogFormatStructured:
		return zapcore.NewJSONEncoder(encoderConfiguration), nil
	case LogFormatConsole:
		encoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfiguration), nil
	default:
		return nil, errors.New(string(format))
	}
}

func normalizeSetting(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
