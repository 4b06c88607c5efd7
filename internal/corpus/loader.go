package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// article is the loose JSON shape the per-source scrapers emit: a list of
// records with at least title/url/content fields.
type article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Load reads a corpus file into a Document. JSON article dumps are flattened
// into text entries; HTML files are flagged for markup extraction during
// normalization. A read failure is returned to the caller, which logs and
// skips the file rather than aborting the batch.
func Load(fi FileInfo) (Document, error) {
	data, err := os.ReadFile(fi.Path)
	if err != nil {
		return Document{}, fmt.Errorf("corpus: read %s: %w", fi.RelPath, err)
	}

	doc := Document{
		ID:          fi.RelPath,
		Source:      fi.Source,
		Path:        fi.Path,
		ContentHash: fi.ContentHash,
		CollectedAt: time.Now(),
	}

	switch strings.ToLower(filepath.Ext(fi.Path)) {
	case ".json":
		doc.RawText = articlesToText(data)
	case ".html", ".htm":
		doc.RawText = string(data)
		doc.IsHTML = true
	default:
		doc.RawText = string(data)
	}

	return doc, nil
}

// articlesToText converts a scraper's JSON article dump into the corpus text
// format. Malformed JSON degrades to the raw bytes; scraped data is messy and
// must never abort ingestion.
func articlesToText(data []byte) string {
	var articles []article
	if err := json.Unmarshal(data, &articles); err != nil || len(articles) == 0 {
		return string(data)
	}

	var b strings.Builder
	for _, a := range articles {
		if strings.TrimSpace(a.Content) == "" {
			continue
		}
		title := a.Title
		if title == "" {
			title = "Sans titre"
		}
		fmt.Fprintf(&b, "Titre de l'article: %s\n", title)
		if a.URL != "" {
			fmt.Fprintf(&b, "URL: %s\n", a.URL)
		}
		fmt.Fprintf(&b, "Contenu:\n%s\n\n%s\n\n", a.Content, strings.Repeat("-", 80))
	}
	if b.Len() == 0 {
		return string(data)
	}
	return b.String()
}
