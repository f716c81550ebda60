// Package utils holds the configuration loader and logger factory shared by the
// git-tools commands.
package utils
