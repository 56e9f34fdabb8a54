package reddit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidProfile is returned for input that names no Reddit user.
var ErrInvalidProfile = errors.New("reddit: invalid profile")

var (
	profileURLPattern = regexp.MustCompile(`^https?://(?:www\.|old\.)?reddit\.com/(?:user|u)/([^/?#]+)(?:[/?#].*)?$`)
	shortPattern      = regexp.MustCompile(`^/?u/([^/?#]+)/?$`)
	usernamePattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
)

// ParseProfileURL extracts the username from a profile URL such as
// https://www.reddit.com/user/Example/, from "u/Example", or from a bare
// username.
func ParseProfileURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidProfile)
	}

	name := s
	switch {
	case strings.Contains(s, "://"):
		m := profileURLPattern.FindStringSubmatch(s)
		if m == nil {
			return "", fmt.Errorf("%w: %q is not a reddit.com/user/ URL", ErrInvalidProfile, s)
		}
		name = m[1]
	case strings.Contains(s, "/"):
		m := shortPattern.FindStringSubmatch(s)
		if m == nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidProfile, s)
		}
		name = m[1]
	}

	if !usernamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q is not a valid username", ErrInvalidProfile, name)
	}
	return name, nil
}
