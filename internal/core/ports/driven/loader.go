package driven

import (
	"context"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// DocumentLoader fetches a document by URL and yields the text chunks to be
// indexed. Table content and other non-prose fragments are flattened into
// the chunk text before chunking.
//
// Fails with domain.ErrUnsupportedFormat for unrecognized file types and
// domain.ErrDownload when the fetch fails.
type DocumentLoader interface {
	Load(ctx context.Context, url string) ([]domain.Chunk, error)
}
