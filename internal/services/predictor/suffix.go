package predictor

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kstonekuan/splatter-mcp-app/internal/types"
)

// The sharp CLI decides the input decoder from the file extension, not the
// content, so a missing extension must be filled in from the payload bytes.
var imageSuffixByMIME = []struct {
	mime   string
	suffix string
}{
	{"image/jpeg", ".jpg"},
	{"image/png", ".png"},
	{"image/gif", ".gif"},
	{"image/bmp", ".bmp"},
	{"image/tiff", ".tiff"},
	{"image/webp", ".webp"},
	{"image/heic", ".heic"},
	{"image/heic-sequence", ".heic"},
	{"image/heif", ".heic"},
	{"image/heif-sequence", ".heic"},
	{"image/avif", ".avif"},
}

const defaultImageSuffix = ".jpg"

// EnsureImageSuffix returns filename unchanged when it already carries an
// extension; otherwise it appends one inferred from the payload's leading
// bytes, defaulting to .jpg when no known image signature matches. A bare
// trailing dot is not a usable extension and counts as missing.
func EnsureImageSuffix(filename string, payload []byte) string {
	ext := strings.TrimSpace(filepath.Ext(filename))
	if ext != "" && ext != "." {
		return filename
	}

	return types.Stem(filename) + InferImageSuffix(payload)
}

// InferImageSuffix sniffs the payload's magic bytes against the known
// image-format signatures.
func InferImageSuffix(payload []byte) string {
	detected := mimetype.Detect(payload)
	for _, entry := range imageSuffixByMIME {
		if detected.Is(entry.mime) {
			return entry.suffix
		}
	}

	return defaultImageSuffix
}
