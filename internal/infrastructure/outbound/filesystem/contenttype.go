package filesystem

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
)

// InferContentType returns explicit when set, otherwise a type guessed from
// the response file extension. Unknown extensions get mock.DefaultContentType.
func InferContentType(explicit, file string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}

	ext := strings.ToLower(filepath.Ext(file))
	switch ext {
	case ".json", "":
		return mock.DefaultContentType
	case ".xml":
		return "application/xml"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".csv":
		return "text/csv"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return mock.DefaultContentType
}
