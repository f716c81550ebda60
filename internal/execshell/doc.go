// Package execshell runs git and the GitHub CLI on behalf of git-tools.
//
// ShellExecutor wraps a CommandRunner (OSCommandRunner by default), turns
// non-zero exit codes into CommandFailedError values, and reports each
// command's lifecycle either as structured zap entries or through a
// CommandEventObserver. CommandMessageFormatter renders those lifecycle
// events as human-readable sentences.
package execshell
