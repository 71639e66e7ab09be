package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxLoginLength is GitHub's limit on usernames.
const maxLoginLength = 39

// loginRegex matches GitHub logins: an alphanumeric followed by alphanumerics
// and hyphens. Legacy accounts may end with or repeat hyphens.
var loginRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,38}$`)

// ValidateLogin validates a GitHub login before it is interpolated into a
// request path.
//
// Validation rules:
//   - Login cannot be empty
//   - Maximum length of 39 characters
//   - No control characters
//   - ASCII letters, digits and hyphens, starting with a letter or digit
func ValidateLogin(login string) error {
	if login == "" {
		return New(ErrCodeInvalidInput, "login cannot be empty")
	}

	if len(login) > maxLoginLength {
		return New(ErrCodeInvalidInput, "login too long (max %d characters)", maxLoginLength)
	}

	for _, r := range login {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "login contains invalid control characters")
		}
	}

	if !loginRegex.MatchString(login) {
		return New(ErrCodeInvalidInput, "invalid GitHub login: %q", login)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
