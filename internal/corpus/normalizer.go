package corpus

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// Readability needs a base URL to resolve relative links; scraped files have
// none, so a placeholder is used.
var placeholderURL, _ = url.Parse("https://localhost/")

var (
	urlRe       = regexp.MustCompile(`https?://\S+`)
	shortLinkRe = regexp.MustCompile(`pic\.twitter\.com/\w+`)
	instagramRe = regexp.MustCompile(`(?i)View this post on Instagram`)
	hashtagRe   = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	mentionRe   = regexp.MustCompile(`@[\p{L}\p{N}_.]+`)
	spaceRunRe  = regexp.MustCompile(`[ \t]+`)
	blankRunRe  = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)

	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
)

// Normalize cleans raw scraped text into plain text. For HTML input it
// extracts the visible article text; for any input it strips URLs,
// social-media artifacts and emoji, collapses whitespace runs and removes
// duplicate lines within the document. It is a pure function and never fails:
// unparseable markup degrades to best-effort tag stripping.
func Normalize(raw string, isHTML bool) string {
	text := raw
	if isHTML {
		text = extractText(raw)
	}

	text = urlRe.ReplaceAllString(text, "")
	text = shortLinkRe.ReplaceAllString(text, "")
	text = instagramRe.ReplaceAllString(text, "")
	text = hashtagRe.ReplaceAllString(text, "")
	text = mentionRe.ReplaceAllString(text, "")
	text = stripEmoji(text)

	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = dedupLines(text)

	return strings.TrimSpace(text)
}

// extractText pulls visible text out of an HTML document. Readability handles
// well-formed pages; anything it chokes on falls through to raw tag stripping
// so ingestion never aborts on a malformed scrape.
func extractText(htmlContent string) string {
	article, err := readability.FromReader(strings.NewReader(htmlContent), placeholderURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.TextContent
	}

	stripped := scriptRe.ReplaceAllString(htmlContent, "\n")
	stripped = tagRe.ReplaceAllString(stripped, "\n")
	return html.UnescapeString(stripped)
}

// stripEmoji removes pictographic code points that show up in scraped social
// media posts.
func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isEmoji(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // symbols, pictographs, supplemental
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators (flags)
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r == 0xFE0F || r == 0x200D: // variation selector, zero-width joiner
		return true
	}
	return false
}

// dedupLines drops repeated non-blank lines within a single document, keeping
// the first occurrence. Blank lines are preserved so paragraph structure
// survives for the chunker.
func dedupLines(text string) string {
	seen := make(map[string]bool)
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kept = append(kept, line)
			continue
		}
		if seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
