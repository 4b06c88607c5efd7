package corpus

import "time"

// Document is a unit of raw input handed over by the collection layer. It is
// immutable once loaded; the ingestion pipeline never writes back to the
// corpus directory.
type Document struct {
	ID          string // Derived from the path relative to the corpus root.
	Source      string // Provenance tag, e.g. the scraper or site name.
	Path        string // Absolute path on disk.
	RawText     string
	IsHTML      bool
	ContentHash string // SHA-256 hex digest of the raw file content.
	CollectedAt time.Time
}

// CleanedDocument is a Document after normalization. CleanText contains no
// markup tags, no absolute URLs and no duplicate consecutive blank lines.
type CleanedDocument struct {
	Document
	CleanText string
}

// Clean normalizes the document's raw text.
func (d Document) Clean() CleanedDocument {
	return CleanedDocument{
		Document:  d,
		CleanText: Normalize(d.RawText, d.IsHTML),
	}
}
