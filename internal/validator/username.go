package validator

import (
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,29}$`)

// reservedUsernames collide with top-level site routes.
var reservedUsernames = map[string]struct{}{
	"admin": {}, "api": {}, "auth": {}, "studios": {}, "search": {},
	"dashboard": {}, "login": {}, "signup": {}, "settings": {},
	"support": {}, "about": {}, "help": {}, "terms": {}, "privacy": {},
}

// NormalizeUsername trims and lowercases a candidate username.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckUsernameSyntax returns "" for an acceptable username, otherwise the
// reason it is rejected. Uniqueness is checked by the caller.
func CheckUsernameSyntax(username string) string {
	name := NormalizeUsername(username)
	switch {
	case len(name) < 3:
		return "Username must be at least 3 characters"
	case len(name) > 30:
		return "Username must be at most 30 characters"
	case !usernamePattern.MatchString(name):
		return "Username may only contain lowercase letters, digits, '-' and '_' and must start with a letter or digit"
	}
	if _, reserved := reservedUsernames[name]; reserved {
		return "Username is reserved"
	}
	return ""
}
