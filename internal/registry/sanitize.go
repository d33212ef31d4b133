package registry

import (
	"path"
	"strings"

	"github.com/danushadhitya/file-manager/internal/models"
)

// Sanitize reduces an arbitrary client-supplied filename to a token safe to
// use as an object-store key and a filename column value. Directory
// components and characters outside [A-Za-z0-9._-] are dropped (spaces become
// underscores), leading and trailing dots, dashes and underscores are
// trimmed, and the result is truncated to the schema bound, keeping the
// extension when it fits. Deterministic; an empty result means the input had
// nothing safe in it and the caller must reject it.
func Sanitize(name string) string {
	// Anything up to the last separator, either style, is a directory part.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	s := strings.Trim(b.String(), "._-")

	if len(s) > models.MaxFilenameLen {
		s = truncate(s, models.MaxFilenameLen)
	}
	return s
}

func truncate(s string, limit int) string {
	ext := path.Ext(s)
	if len(ext) >= limit {
		return s[:limit]
	}
	base := s[:len(s)-len(ext)]
	if keep := limit - len(ext); len(base) > keep {
		base = base[:keep]
	}
	return base + ext
}
