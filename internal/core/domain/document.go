package domain

// Chunk is a fragment of the source document, the unit of indexing.
// Metadata carries free-form tags; the pipeline stamps a "domain" tag onto
// every chunk after query analysis so retrieval can be scoped.
type Chunk struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Position int               `json:"position"` // Chunk position within document
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MetadataDomainKey is the metadata key used to scope chunks to a
// subject-matter domain.
const MetadataDomainKey = "domain"

// SetDomain stamps the domain tag onto the chunk metadata.
func (c *Chunk) SetDomain(domainTag string) {
	if c.Metadata == nil {
		c.Metadata = make(map[string]string, 1)
	}
	c.Metadata[MetadataDomainKey] = domainTag
}

// Passage is a chunk retrieved from the semantic index in response to a
// query. ID is the retrieval engine's point ID and is the identity used for
// deduplication across sub-queries.
type Passage struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// IndexingStatus reports the outcome of writing chunks to the semantic index.
type IndexingStatus struct {
	Collection    string `json:"collection"`
	ChunksWritten int    `json:"chunks_written"`

	// Acknowledged is true when the index backend confirmed write
	// visibility. When false the caller must wait out the configured
	// staleness window before reading.
	Acknowledged bool `json:"acknowledged"`
}
