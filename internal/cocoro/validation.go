package cocoro

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shossk/cocoro-sdk/internal/device"
)

// ValidateAppSecret validates the account's app secret. It is sent as a
// query parameter, so it must be a single token of URL-safe characters.
func ValidateAppSecret(secret string) error {
	if secret == "" {
		return NewValidationError("app secret cannot be empty")
	}
	if !isToken(secret) {
		return NewValidationError("app secret must contain only letters, digits, '-', '_', '.' or '~'")
	}
	return nil
}

// ValidateAppKey validates the account's app key, which becomes the last
// path segment of the terminal application ID
func ValidateAppKey(key string) error {
	if key == "" {
		return NewValidationError("app key cannot be empty")
	}
	if !isToken(key) {
		return NewValidationError("app key must contain only letters, digits, '-', '_', '.' or '~'")
	}
	return nil
}

// ValidateCredentials validates both credentials, reporting the first problem
func ValidateCredentials(appSecret, appKey string) error {
	if err := ValidateAppSecret(appSecret); err != nil {
		return err
	}
	return ValidateAppKey(appKey)
}

// ValidateBaseURL validates an API root. Only HTTPS is accepted except for
// loopback hosts, which tests and local proxies use.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return NewValidationError("base URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return NewValidationError(fmt.Sprintf("invalid base URL: %v", err))
	}
	if u.Host == "" {
		return NewValidationError(fmt.Sprintf("base URL %q has no host", raw))
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return NewValidationError("base URL must not carry a query or fragment")
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host == "localhost" || host == "127.0.0.1" || host == "::1" {
			return nil
		}
		return NewValidationError(fmt.Sprintf("base URL must use https, got %q", raw))
	default:
		return NewValidationError(fmt.Sprintf("base URL scheme must be https, got %q", u.Scheme))
	}
}

// ValidateSubmission checks a submission before it is sent.
// Returns a slice of validation errors (empty if valid).
func ValidateSubmission(sub device.Submission) []error {
	var errs []error

	if sub.DeviceID == 0 {
		errs = append(errs, NewValidationError("submission has no device ID"))
	}
	if sub.EchonetNode == "" {
		errs = append(errs, NewValidationError("submission has no echonet node"))
	}
	if sub.EchonetObject == "" {
		errs = append(errs, NewValidationError("submission has no echonet object"))
	}
	for _, s := range sub.Status {
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("status %s: %w", s.Code, err))
		}
	}

	return errs
}

// FormatValidationErrors formats a slice of validation errors into a user-friendly message.
func FormatValidationErrors(errs []error) string {
	if len(errs) == 0 {
		return "No validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation failed with %d error(s):\n", len(errs)))

	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}

	return sb.String()
}

func isToken(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == '~':
		default:
			return false
		}
	}
	return true
}
