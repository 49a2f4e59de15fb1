package config

import "errors"

const DefaultSharpHome = "~/.sharp"

const (
	// DefaultCheckpointUrl is the fixed source location of the SHARP model
	// weights. The engine downloads it once into the shared cache.
	DefaultCheckpointUrl      = "https://ml-site.cdn-apple.com/models/sharp/sharp_2572gikvuh.pt"
	DefaultCheckpointFilename = "sharp_2572gikvuh.pt"

	DefaultSharpBinary = "sharp"

	// DefaultTimeoutSeconds bounds the adapter's single upstream call.
	DefaultTimeoutSeconds = 300.0

	// DefaultTierWorkers bounds concurrent predictions per compute tier.
	DefaultTierWorkers = 2
)

var (
	ErrSharpHomeNotSet       = errors.New("sharp home directory is not set")
	ErrSharpHomeExpandFailed = errors.New("failed to expand sharp home directory")
)
