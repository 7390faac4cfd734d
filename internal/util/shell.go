// Package util holds small helpers shared by the report, display and CLI
// packages.
package util

import "strings"

// ShellQuote single-quotes s for a POSIX shell.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ShellQuotePreserveTilde quotes a path like ShellQuote but leaves a leading
// ~/ unquoted so the remote shell expands it.
func ShellQuotePreserveTilde(path string) string {
	switch {
	case path == "~":
		return path
	case strings.HasPrefix(path, "~/"):
		return "~/" + ShellQuote(path[2:])
	}
	return ShellQuote(path)
}
