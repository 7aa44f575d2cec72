package util

import (
	"errors"
	"strings"
)

// maxFileNameLen caps uploaded file names; longer names break some
// filesystems and bloat storage keys.
const maxFileNameLen = 255

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if len(s) > maxFileNameLen {
		return "", errors.New("file name too long")
	}
	return s, nil
}
