package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// Expand replaces variables in a report path. Supported variables:
//   - ${HOME}   - user's home directory
//   - ${USER}   - current username
//   - ${DATE}   - start date, YYYY-MM-DD
//   - ${TIME}   - start time, HHMMSS
//   - ${SERIAL} - device serial (left alone when serial is empty)
func Expand(s string, now time.Time, serial string) string {
	if s == "" {
		return s
	}

	result := ExpandTilde(s)

	if strings.Contains(result, "${HOME}") {
		result = strings.ReplaceAll(result, "${HOME}", getHome())
	}

	if strings.Contains(result, "${USER}") {
		result = strings.ReplaceAll(result, "${USER}", getUser())
	}

	result = strings.ReplaceAll(result, "${DATE}", now.Format("2006-01-02"))
	result = strings.ReplaceAll(result, "${TIME}", now.Format("150405"))

	if serial != "" {
		result = strings.ReplaceAll(result, "${SERIAL}", sanitizeForPath(serial))
	}

	return result
}

// sanitizeForPath makes a device serial (which can be "host:port" for
// network devices) safe to use as a file name.
func sanitizeForPath(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}

// getUser returns the current username for ${USER} expansion.
func getUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}

	if user := os.Getenv("LOGNAME"); user != "" {
		return user
	}

	if user := os.Getenv("USERNAME"); user != "" {
		return user
	}

	out, err := exec.Command("whoami").Output()
	if err != nil {
		return "user"
	}
	return strings.TrimSpace(string(out))
}

// getHome returns the home directory for ${HOME} expansion.
func getHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "~"
}
