package corpus

import (
	"strings"
)

// Section is one cleaned per-source contribution to the merged corpus.
type Section struct {
	Name string // Source file name used in the provenance header.
	Text string
}

const headerPrefix = "--- Contenu de "
const headerSuffix = " ---"

// Merge consolidates cleaned per-source sections into a single master corpus
// document. Lines are deduplicated globally (exact match after trimming,
// first occurrence wins) and each retained section is prefixed with a
// provenance header naming its source. Sections left empty after
// deduplication are omitted. The output is deterministic, so merging the
// same inputs twice yields byte-identical results.
func Merge(sections []Section) string {
	seen := make(map[string]bool)
	var out strings.Builder

	for _, section := range sections {
		var kept []string
		for _, line := range strings.Split(section.Text, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if seen[trimmed] {
				continue
			}
			seen[trimmed] = true
			kept = append(kept, line)
		}
		if len(kept) == 0 {
			continue
		}

		out.WriteString(headerPrefix)
		out.WriteString(section.Name)
		out.WriteString(headerSuffix)
		out.WriteString("\n")
		out.WriteString(strings.Join(kept, "\n"))
		out.WriteString("\n\n")
	}

	return out.String()
}

// ParseMerged splits a merged corpus document back into its provenance
// sections. Feeding the result to Merge reproduces the input unchanged,
// which makes re-running the merge harmless.
func ParseMerged(merged string) []Section {
	var sections []Section
	var current *Section

	for _, line := range strings.Split(merged, "\n") {
		if strings.HasPrefix(line, headerPrefix) && strings.HasSuffix(line, headerSuffix) {
			if current != nil {
				current.Text = strings.TrimRight(current.Text, "\n")
				sections = append(sections, *current)
			}
			name := strings.TrimSuffix(strings.TrimPrefix(line, headerPrefix), headerSuffix)
			current = &Section{Name: name}
			continue
		}
		if current != nil {
			current.Text += line + "\n"
		}
	}
	if current != nil {
		current.Text = strings.TrimRight(current.Text, "\n")
		sections = append(sections, *current)
	}

	return sections
}
