// Package userutil derives per-user object names for pipes and mutexes.
package userutil

import (
	"os"
	"os/user"
	"regexp"
	"strings"
)

var invalidUsernameRune = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// test seams
var (
	getenvFn      = os.Getenv
	currentUserFn = user.Current
)

// SanitizeUsername maps a username onto the characters allowed in object names.
func SanitizeUsername(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return invalidUsernameRune.ReplaceAllString(value, "_")
}

// CurrentUsername returns the sanitized name of the user running the process.
func CurrentUsername() string {
	username := strings.TrimSpace(getenvFn("USERNAME"))
	if username == "" {
		if current, err := currentUserFn(); err == nil {
			username = current.Username
		}
	}
	return SanitizeUsername(username)
}

// ObjectName joins prefix and the current user, e.g. "LangTray-alice".
func ObjectName(prefix string) string {
	return prefix + "-" + CurrentUsername()
}
