package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePodName validates a pod name for safety and correctness.
// It rejects names that could be used for path traversal when a pod name is
// turned into a specs-repo path or a CDN URL.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No whitespace or control characters
//   - No path traversal sequences (.., //, backslashes)
//   - Maximum length of 256 characters
//
// A subspec reference such as "Firebase/Core" is accepted.
func ValidatePodName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "pod name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "pod name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "pod name contains whitespace or control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "pod name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return New(ErrCodeInvalidPackage, "pod name cannot start or end with '/'")
	}

	return nil
}

// ValidatePattern validates a pod name regular expression and returns the
// compiled, case-insensitive form.
func ValidatePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, New(ErrCodeInvalidPattern, "pod name pattern cannot be empty")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, Wrap(ErrCodeInvalidPattern, err, "invalid pod name pattern %q", pattern)
	}
	return re, nil
}

// ValidateOutputPath validates a user supplied output path.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}
	return nil
}
