package storage

import (
	"regexp"
	"strings"

	"finledger/internal/core"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// ValidateUsername checks that a username can be used as a namespace file
// name without escaping the data directory.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return &core.NamespaceError{Username: username, Reason: "username is empty"}
	case strings.ContainsAny(username, `/\`):
		return &core.NamespaceError{Username: username, Reason: "contains a path separator"}
	case strings.Contains(username, ".."):
		return &core.NamespaceError{Username: username, Reason: "contains '..'"}
	case !usernamePattern.MatchString(username):
		return &core.NamespaceError{Username: username, Reason: "must match " + usernamePattern.String()}
	}
	return nil
}
