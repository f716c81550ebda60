package ui

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scottidler/git-tools/internal/execshell"
)

// ConsoleCommandEventLogger writes one readable sentence per git or gh lifecycle event.
// Starts are logged at debug so the default warn level only shows failures.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs a ConsoleCommandEventLogger; a nil logger discards events.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	eventLogger.emit(zapcore.DebugLevel, func(formatter execshell.CommandMessageFormatter) string {
		return formatter.BuildStartedMessage(command)
	})
}

// CommandCompleted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode != 0 {
		eventLogger.emit(zapcore.WarnLevel, func(formatter execshell.CommandMessageFormatter) string {
			return formatter.BuildFailureMessage(command, result)
		})
		return
	}
	eventLogger.emit(zapcore.InfoLevel, func(formatter execshell.CommandMessageFormatter) string {
		return formatter.BuildSuccessMessage(command, result)
	})
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	eventLogger.emit(zapcore.ErrorLevel, func(formatter execshell.CommandMessageFormatter) string {
		return formatter.BuildExecutionFailureMessage(command, failure)
	})
}

// emit renders the message only when level is enabled.
func (eventLogger *ConsoleCommandEventLogger) emit(level zapcore.Level, render func(execshell.CommandMessageFormatter) string) {
	if eventLogger == nil {
		return
	}
	if checked := eventLogger.logger.Check(level, ""); checked != nil {
		checked.Message = render(eventLogger.formatter)
		checked.Write()
	}
}
