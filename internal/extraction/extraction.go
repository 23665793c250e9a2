package extraction

import (
	"context"
	"path/filepath"
	"strings"

	"mailroom/internal/classify"
)

// Metadata carries per-document context passed alongside the content.
type Metadata struct {
	DisplayName string
}

// ProgressFunc receives human-readable progress messages during an analysis.
type ProgressFunc func(message string)

// Client is the document-understanding contract consumed by the batch
// engine.
type Client interface {
	Analyze(ctx context.Context, content []byte, mimeType string, meta Metadata, onProgress ProgressFunc) ([]classify.RawRecord, error)
}

// supportedMimeTypes is the fixed allow-list; anything else fails fast as
// invalid input before any network call.
var supportedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/heic":      {},
	"image/heif":      {},
}

// SupportedMimeType reports whether the service accepts the given mime type.
func SupportedMimeType(mimeType string) bool {
	_, ok := supportedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	return ok
}

var extensionMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
}

// MimeTypeForPath guesses a supported mime type from a file extension,
// returning "" when the extension is not in the allow-list.
func MimeTypeForPath(path string) string {
	return extensionMimeTypes[strings.ToLower(filepath.Ext(path))]
}
