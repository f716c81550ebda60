// Package shellinit prints the shell function that wraps git-tools clone and changes
// directory into the path it prints.
package shellinit
