package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscape reports a path that would leave its base directory.
var ErrPathEscape = errors.New("path escapes base directory")

// ResolveWithin joins elems under base and guarantees the result stays
// inside base. Elements containing ".." or absolute segments resolve to an
// error instead of a path outside the trusted root. The returned path is
// absolute.
func ResolveWithin(base string, elems ...string) (string, error) {
	if base == "" {
		return "", errors.New("base directory is required")
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base: %w", err)
	}

	target, err := filepath.Abs(filepath.Join(append([]string{absBase}, elems...)...))
	if err != nil {
		return "", fmt.Errorf("resolve target: %w", err)
	}

	rel, err := filepath.Rel(absBase, target)
	if err != nil {
		return "", fmt.Errorf("relativize target: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, target)
	}

	return target, nil
}

// SanitizeFilename reduces a free-form string, such as a scanned URL, to a
// name safe to use as a single path component. Separators and control
// characters collapse to "-"; an empty result becomes "scan".
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "scan"
	}
	return out
}
