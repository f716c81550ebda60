// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger turns shell command lifecycle events into concise
// log messages, and StatusPalette renders ownership status labels with
// terminal colors when standard output is a terminal.
package ui
