package predictor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInferImageSuffix(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		expected string
	}{
		{
			name:     "jpeg signature",
			payload:  []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'},
			expected: ".jpg",
		},
		{
			name:     "png signature",
			payload:  []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 13, 'I', 'H', 'D', 'R'},
			expected: ".png",
		},
		{
			name:     "gif signature",
			payload:  []byte("GIF89a trailing data"),
			expected: ".gif",
		},
		{
			name:     "webp signature",
			payload:  append([]byte("RIFF\x24\x00\x00\x00WEBP"), []byte("VP8 ")...),
			expected: ".webp",
		},
		{
			name:     "unknown signature defaults to jpg",
			payload:  []byte("definitely not an image"),
			expected: ".jpg",
		},
		{
			name:     "empty payload defaults to jpg",
			payload:  nil,
			expected: ".jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, InferImageSuffix(tt.payload))
		})
	}
}

func TestEnsureImageSuffix(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	// existing extensions are kept, whatever the payload says
	require.Equal(t, "photo.png", EnsureImageSuffix("photo.png", jpeg))
	require.Equal(t, "photo.jpeg", EnsureImageSuffix("photo.jpeg", nil))

	// missing extensions are inferred from content
	require.Equal(t, "photo.jpg", EnsureImageSuffix("photo", jpeg))
	require.Equal(t, "upload.jpg", EnsureImageSuffix("upload", []byte("junk")))
}

func TestEnsureImageSuffixTrailingDot(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	// a bare trailing dot is not a usable extension
	require.Equal(t, "photo.jpg", EnsureImageSuffix("photo.", jpeg))
	require.Equal(t, "upload.jpg", EnsureImageSuffix("upload.", []byte("junk")))
}
