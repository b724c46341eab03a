// Package loader fetches documents over HTTP and turns them into chunks.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rajeev-sr/hackrx/internal/chunker"
	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
	"github.com/rajeev-sr/hackrx/internal/extractors"
)

// Verify interface compliance
var _ driven.DocumentLoader = (*HTTPLoader)(nil)

// DefaultMaxBytes caps the document download size.
const DefaultMaxBytes = 32 << 20 // 32 MiB

// HTTPLoader implements driven.DocumentLoader: it downloads the document,
// picks an extractor by MIME type, and splits the text into chunks.
type HTTPLoader struct {
	httpClient *http.Client
	registry   driven.ExtractorRegistry
	splitter   *chunker.Splitter
	maxBytes   int64
	logger     *slog.Logger
}

// Config holds loader configuration.
type Config struct {
	// Timeout for the whole download
	Timeout time.Duration

	// MaxBytes caps the response size; zero means DefaultMaxBytes
	MaxBytes int64

	// ChunkSize and ChunkOverlap configure the splitter; zero values
	// fall back to the chunker defaults
	ChunkSize    int
	ChunkOverlap int

	// Registry overrides the default extractor set when non-nil
	Registry driven.ExtractorRegistry

	Logger *slog.Logger
}

// NewHTTPLoader creates an HTTPLoader.
func NewHTTPLoader(cfg Config) *HTTPLoader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	registry := cfg.Registry
	if registry == nil {
		registry = extractors.DefaultRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPLoader{
		httpClient: &http.Client{Timeout: timeout},
		registry:   registry,
		splitter:   chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		maxBytes:   maxBytes,
		logger:     logger.With("component", "loader"),
	}
}

// Load downloads the document at rawURL and returns its chunks.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string) ([]domain.Chunk, error) {
	fetchURL, err := normalizeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	data, contentType, err := l.fetch(ctx, fetchURL)
	if err != nil {
		return nil, err
	}

	mimeType := resolveMIMEType(contentType, fetchURL)
	extractor := l.registry.Get(mimeType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: no extractor for %s", domain.ErrUnsupportedFormat, mimeType)
	}

	text, err := extractor.Extract(data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", mimeType, err)
	}

	chunks := l.splitter.Split(docID(fetchURL), text)
	l.logger.Info("document loaded",
		"url", fetchURL,
		"mime_type", mimeType,
		"bytes", len(data),
		"chunks", len(chunks),
	)
	return chunks, nil
}

func (l *HTTPLoader) fetch(ctx context.Context, fetchURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("%w: %s returned %s", domain.ErrDownload, fetchURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read body: %v", domain.ErrDownload, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, "", fmt.Errorf("%w: document exceeds %d bytes", domain.ErrDownload, l.maxBytes)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// normalizeURL validates rawURL and rewrites Google Docs share links to
// their direct PDF export endpoint so the raw bytes can be fetched.
func normalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if u.Host == "docs.google.com" && strings.HasPrefix(u.Path, "/document/d/") {
		parts := strings.Split(u.Path, "/")
		if len(parts) >= 4 && parts[3] != "" {
			return fmt.Sprintf("https://docs.google.com/document/d/%s/export?format=pdf", parts[3]), nil
		}
	}
	return u.String(), nil
}

// resolveMIMEType prefers the Content-Type header and falls back to the URL
// extension. Generic binary types also fall through to the extension, since
// blob stores commonly serve PDFs as application/octet-stream.
func resolveMIMEType(contentType, fetchURL string) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil &&
			mt != "application/octet-stream" && mt != "binary/octet-stream" {
			return mt
		}
	}

	if u, err := url.Parse(fetchURL); err == nil {
		switch strings.ToLower(path.Ext(u.Path)) {
		case ".pdf":
			return "application/pdf"
		case ".html", ".htm":
			return "text/html"
		case ".md":
			return "text/markdown"
		case ".txt":
			return "text/plain"
		}
	}
	if strings.Contains(fetchURL, "export?format=pdf") {
		return "application/pdf"
	}
	return "text/plain"
}

// docID derives a stable chunk ID prefix from the document URL.
func docID(fetchURL string) string {
	if u, err := url.Parse(fetchURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			return base
		}
		return u.Host
	}
	return "document"
}
