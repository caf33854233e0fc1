package model

// Version constants for the model schema and the atlas generator.
const (
	// SchemaVersion is the model schema version.
	SchemaVersion = "1"

	// GeneratorVersion is the atlas generator version.
	GeneratorVersion = "0.1.0"
)
