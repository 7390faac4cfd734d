package exec

import (
	"fmt"
	"regexp"

	"github.com/rileyhilliard/b2gmon/internal/errors"
)

// ExitCommandNotFound is the shell's exit status for a missing program.
const ExitCommandNotFound = 127

// notFoundPatterns extract the program name from a shell's
// "command not found" message. Only consulted for exit status 127.
var notFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)-bash: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)(\S+): not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
}

// IsCommandNotFound reports whether a remote shell could not find the
// program, and the program name when the message names one.
func IsCommandNotFound(stderr string, exitCode int) (string, bool) {
	if exitCode != ExitCommandNotFound {
		return "", false
	}
	for _, pattern := range notFoundPatterns {
		if m := pattern.FindStringSubmatch(stderr); len(m) > 1 {
			return trimQuotes(m[1]), true
		}
	}
	return "", true
}

// commandNotFoundError describes a program missing on the adb host.
func commandNotFoundError(name, host string) error {
	return errors.New(errors.ErrExec,
		fmt.Sprintf("'%s' not found on %s", name, host),
		fmt.Sprintf(`Install Android platform-tools on %s, or point --adb at the full path.

Non-interactive SSH sessions often skip the profile that sets PATH. Check with:
  ssh %s 'command -v %s'`, host, host, name))
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
