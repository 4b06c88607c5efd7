package rag

import "strings"

// Mode selects the answering persona and its refusal phrase.
type Mode string

const (
	ModeDefault    Mode = "default"
	ModeSummary    Mode = "summary"
	ModeStatistics Mode = "statistics"
)

// RefusalDefault and friends are the exact phrases the prompts instruct the
// model to emit when the context cannot support an answer. The composer also
// returns them directly when retrieval comes back empty.
const (
	RefusalDefault    = "Je ne dispose pas d'informations suffisantes pour répondre à cette question."
	RefusalSummary    = "Le contexte fourni ne contient pas assez d'informations pour un résumé."
	RefusalStatistics = "Cette statistique n'est pas disponible dans le contexte."
)

// SystemPrompt returns the mode's system prompt with the retrieved context
// interpolated.
func (m Mode) SystemPrompt(contextBlock string) string {
	var tmpl string
	switch m {
	case ModeSummary:
		tmpl = summarySystemPrompt
	case ModeStatistics:
		tmpl = statisticsSystemPrompt
	default:
		tmpl = defaultSystemPrompt
	}
	return strings.ReplaceAll(tmpl, "{context}", contextBlock)
}

// RefusalPhrase returns the exact refusal text for the mode.
func (m Mode) RefusalPhrase() string {
	switch m {
	case ModeSummary:
		return RefusalSummary
	case ModeStatistics:
		return RefusalStatistics
	default:
		return RefusalDefault
	}
}

var (
	summaryKeywords    = []string{"résume", "résumé", "synthèse"}
	statisticsKeywords = []string{"combien", "statistique", "score", "chiffre"}
)

// ClassifyMode picks a mode from keywords in the raw utterance. Summary wins
// over statistics when both match.
func ClassifyMode(utterance string) Mode {
	lower := strings.ToLower(utterance)
	for _, kw := range summaryKeywords {
		if strings.Contains(lower, kw) {
			return ModeSummary
		}
	}
	for _, kw := range statisticsKeywords {
		if strings.Contains(lower, kw) {
			return ModeStatistics
		}
	}
	return ModeDefault
}
