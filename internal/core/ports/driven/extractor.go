package driven

// Extractor converts one document format into plain text.
// Implementations handle specific MIME types (PDF, HTML, plain text).
type Extractor interface {
	// Extract converts raw document bytes to plain text.
	// Returns domain.ErrUnsupportedFormat when the payload is not
	// actually the format the extractor handles.
	Extract(data []byte, mimeType string) (string, error)

	// SupportedTypes returns the MIME types this extractor handles.
	// Wildcards are allowed (e.g. "text/*").
	SupportedTypes() []string

	// Priority determines selection order when multiple extractors
	// match a MIME type. Higher wins.
	Priority() int
}

// ExtractorRegistry manages extractor registration and lookup.
type ExtractorRegistry interface {
	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// Get retrieves the best-matching extractor for a MIME type.
	// Returns nil if none is registered for the type.
	Get(mimeType string) Extractor

	// List returns all registered MIME types.
	List() []string
}
