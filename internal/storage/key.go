package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// SanitizeFileName strips path components and replaces whitespace and
// anything outside a safe character set, so user-supplied names can be
// embedded in object keys.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
	name = strings.TrimLeft(name, ".")
	if len(name) > 80 {
		name = name[len(name)-80:]
	}
	if name == "" {
		return "file"
	}
	return name
}

// ObjectKey builds an upload key namespaced under "uploads/" with a
// millisecond timestamp prefix to avoid collisions between same-named files.
func ObjectKey(fileName string) string {
	return fmt.Sprintf("uploads/%d-%s", time.Now().UnixMilli(), SanitizeFileName(fileName))
}
