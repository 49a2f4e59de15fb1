package types

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// GPUTier selects which compute profile handles a prediction. The set is
// closed; boundary validation rejects anything outside it.
type GPUTier string

const (
	TierT4   GPUTier = "t4"
	TierL4   GPUTier = "l4"
	TierA10  GPUTier = "a10"
	TierA100 GPUTier = "a100"
	TierH100 GPUTier = "h100"
)

const DefaultGPUTier = TierA10

var AllGPUTiers = []GPUTier{TierT4, TierL4, TierA10, TierA100, TierH100}

func (t GPUTier) Valid() bool {
	for _, tier := range AllGPUTiers {
		if t == tier {
			return true
		}
	}

	return false
}

// GenerateSplatRequest is the inbound wire shape shared by the adapter's
// /v1/generate-splat endpoint and the engine's /v1/predict endpoint.
type GenerateSplatRequest struct {
	ImageBytesBase64 string `json:"imageBytesBase64"`
	Filename         string `json:"filename"`
	GPUTier          string `json:"gpuTier"`
}

type GenerateSplatResponse struct {
	OutputFilename string  `json:"outputFilename"`
	PlyBytesBase64 string  `json:"plyBytesBase64"`
	ElapsedMs      float64 `json:"elapsedMs"`
}

// ValidatedRequest is the immutable post-boundary form of a request. The
// payload is decoded, the filename reduced to a normalized basename and the
// tier guaranteed to be a member of the closed set.
type ValidatedRequest struct {
	ImageBytes []byte
	Filename   string
	Tier       GPUTier
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

const maxFilenameLength = 512

// Validate enforces the boundary contract: the payload must be valid,
// non-empty base64; the filename must keep 1-512 visible characters after
// stripping any directory components; the tier defaults to a10 and must be
// one of the known GPU classes.
func (r *GenerateSplatRequest) Validate() (*ValidatedRequest, error) {
	if r.ImageBytesBase64 == "" {
		return nil, &ValidationError{Field: "imageBytesBase64", Reason: "must not be empty"}
	}

	imageBytes, err := base64.StdEncoding.DecodeString(r.ImageBytesBase64)
	if err != nil {
		return nil, &ValidationError{Field: "imageBytesBase64", Reason: "must be valid base64 data"}
	}
	if len(imageBytes) == 0 {
		return nil, &ValidationError{Field: "imageBytesBase64", Reason: "must not decode to an empty payload"}
	}

	filename, err := NormalizeFilename(r.Filename)
	if err != nil {
		return nil, err
	}

	tier := GPUTier(strings.ToLower(strings.TrimSpace(r.GPUTier)))
	if tier == "" {
		tier = DefaultGPUTier
	}
	if !tier.Valid() {
		return nil, &ValidationError{
			Field:  "gpuTier",
			Reason: fmt.Sprintf("must be one of %v", AllGPUTiers),
		}
	}

	return &ValidatedRequest{
		ImageBytes: imageBytes,
		Filename:   filename,
		Tier:       tier,
	}, nil
}

// NormalizeFilename strips directory components and surrounding whitespace,
// keeping only the basename. Inputs that reduce to nothing visible reject.
func NormalizeFilename(raw string) (string, error) {
	normalized := strings.TrimSpace(filepath.Base(strings.TrimSpace(raw)))
	if normalized == "" || normalized == "." || normalized == ".." || normalized == string(filepath.Separator) {
		return "", &ValidationError{Field: "filename", Reason: "must include at least one visible character"}
	}
	if len(normalized) > maxFilenameLength {
		return "", &ValidationError{
			Field:  "filename",
			Reason: fmt.Sprintf("must be at most %d characters", maxFilenameLength),
		}
	}

	return normalized, nil
}

// Stem returns the filename without its extension.
func Stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
