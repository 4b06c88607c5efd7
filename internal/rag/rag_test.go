package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zakariaelb/canrag/internal/llm"
	"github.com/zakariaelb/canrag/internal/vectorstore"
)

const testDims = 16

// fakeEmbedder maps text to a deterministic normalized vector, so the same
// text always retrieves itself first.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = fakeVector(t)
	}
	return out, nil
}

func (f fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (fakeEmbedder) Dimensions() int { return testDims }
func (fakeEmbedder) Name() string    { return "fake" }

func fakeVector(text string) []float32 {
	vec := make([]float32, testDims)
	for i, ch := range text {
		vec[(int(ch)+i)%testDims] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

// scriptedProvider returns canned content and records every request.
type scriptedProvider struct {
	mu      sync.Mutex
	calls   []llm.CompletionRequest
	content string
	err     error
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.content, FinishReason: "stop"}, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *scriptedProvider) lastSystemPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return ""
	}
	last := p.calls[len(p.calls)-1]
	for _, m := range last.Messages {
		if m.Role == llm.RoleSystem {
			return m.Content
		}
	}
	return ""
}

func newTestStore(t *testing.T, texts ...string) vectorstore.Store {
	t.Helper()
	store, err := vectorstore.OpenNative(t.TempDir(), testDims)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	entries := make([]vectorstore.Entry, len(texts))
	for i, text := range texts {
		entries[i] = vectorstore.Entry{
			ChunkID: text[:min(8, len(text))] + "-" + string(rune('a'+i)),
			Vector:  fakeVector(text),
			Text:    text,
			Metadata: vectorstore.Metadata{
				DocumentID: "doc",
				Source:     "test",
				IngestedAt: time.Now(),
			},
		}
	}
	if len(entries) > 0 {
		if err := store.Add(context.Background(), entries); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return store
}

// --- Mode classification ---

func TestClassifyMode(t *testing.T) {
	tests := []struct {
		utterance string
		want      Mode
	}{
		{"Résume-moi la CAN 2025", ModeSummary},
		{"Fais une synthèse du tournoi", ModeSummary},
		{"Combien de stades au Maroc ?", ModeStatistics},
		{"Quel est le score de la finale ?", ModeStatistics},
		{"Donne-moi un chiffre sur l'affluence", ModeStatistics},
		{"Quand commence la CAN ?", ModeDefault},
		{"Qui a gagné la dernière CAN ?", ModeDefault},
		{"", ModeDefault},
	}
	for _, tt := range tests {
		if got := ClassifyMode(tt.utterance); got != tt.want {
			t.Errorf("ClassifyMode(%q) = %q, want %q", tt.utterance, got, tt.want)
		}
	}
}

func TestRefusalPhrases(t *testing.T) {
	if ModeDefault.RefusalPhrase() != "Je ne dispose pas d'informations suffisantes pour répondre à cette question." {
		t.Errorf("default refusal changed: %q", ModeDefault.RefusalPhrase())
	}
	if ModeSummary.RefusalPhrase() != "Le contexte fourni ne contient pas assez d'informations pour un résumé." {
		t.Errorf("summary refusal changed: %q", ModeSummary.RefusalPhrase())
	}
	if ModeStatistics.RefusalPhrase() != "Cette statistique n'est pas disponible dans le contexte." {
		t.Errorf("statistics refusal changed: %q", ModeStatistics.RefusalPhrase())
	}
}

func TestSystemPromptInterpolatesContext(t *testing.T) {
	for _, mode := range []Mode{ModeDefault, ModeSummary, ModeStatistics} {
		prompt := mode.SystemPrompt("CONTENU-SENTINELLE")
		if !strings.Contains(prompt, "CONTENU-SENTINELLE") {
			t.Errorf("mode %q: context not interpolated", mode)
		}
		if strings.Contains(prompt, "{context}") {
			t.Errorf("mode %q: placeholder left in prompt", mode)
		}
	}
}

// --- Rewriter ---

func TestRewriteEmptyHistoryShortCircuits(t *testing.T) {
	provider := &scriptedProvider{content: "should not be called"}

	got, err := Rewrite(context.Background(), provider, nil, "Quand commence la CAN ?")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if got != "Quand commence la CAN ?" {
		t.Errorf("utterance not passed through verbatim: %q", got)
	}
	if provider.callCount() != 0 {
		t.Errorf("expected no model call with empty history, got %d", provider.callCount())
	}
}

func TestRewriteUsesHistory(t *testing.T) {
	provider := &scriptedProvider{content: "Quand commence la CAN 2025 ?"}
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "Parle-moi de la CAN 2025."},
		{Role: llm.RoleAssistant, Content: "La CAN 2025 se joue au Maroc."},
	}

	got, err := Rewrite(context.Background(), provider, history, "Quand commence-t-elle ?")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if got != "Quand commence la CAN 2025 ?" {
		t.Errorf("unexpected standalone question: %q", got)
	}
	if provider.callCount() != 1 {
		t.Fatalf("expected 1 model call, got %d", provider.callCount())
	}
	sys := provider.lastSystemPrompt()
	if !strings.Contains(sys, "formulate a standalone question") {
		t.Errorf("rephrase instruction missing from system prompt: %q", sys)
	}
}

func TestRewriteErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("boom")}
	history := []llm.Message{{Role: llm.RoleUser, Content: "salut"}}

	_, err := Rewrite(context.Background(), provider, history, "et ensuite ?")
	if err == nil {
		t.Fatal("expected error from provider")
	}
}

// --- Composer ---

func TestAskEmptyIndexReturnsRefusalVerbatim(t *testing.T) {
	store := newTestStore(t)
	provider := &scriptedProvider{content: "should not be called"}
	engine := NewEngine(store, fakeEmbedder{}, provider, Options{TopK: 4, MaxContextChars: 8000})

	tests := []struct {
		utterance string
		want      string
		wantMode  Mode
	}{
		{"Quand commence la CAN ?", RefusalDefault, ModeDefault},
		{"Résume-moi la CAN 2025", RefusalSummary, ModeSummary},
		{"Combien de buts ont été marqués ?", RefusalStatistics, ModeStatistics},
	}
	for _, tt := range tests {
		answer, mode, err := engine.Ask(context.Background(), nil, tt.utterance)
		if err != nil {
			t.Fatalf("Ask(%q): %v", tt.utterance, err)
		}
		if answer != tt.want {
			t.Errorf("Ask(%q) = %q, want verbatim refusal %q", tt.utterance, answer, tt.want)
		}
		if mode != tt.wantMode {
			t.Errorf("Ask(%q) mode = %q, want %q", tt.utterance, mode, tt.wantMode)
		}
	}
	if provider.callCount() != 0 {
		t.Errorf("empty retrieval must not call the model, got %d calls", provider.callCount())
	}
}

func TestAskGroundsAnswerInRetrievedContext(t *testing.T) {
	store := newTestStore(t,
		"La CAN 2025 débutera le 18 janvier 2026 au Maroc.",
		"Le Maroc dispose de plusieurs stades rénovés pour la compétition.",
	)
	provider := &scriptedProvider{content: "La CAN 2025 débutera le 18 janvier 2026."}
	engine := NewEngine(store, fakeEmbedder{}, provider, Options{TopK: 4, MaxContextChars: 8000})

	answer, mode, err := engine.Ask(context.Background(), nil, "La CAN 2025 débutera le 18 janvier 2026 au Maroc.")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if mode != ModeDefault {
		t.Errorf("mode = %q, want default", mode)
	}
	if !strings.Contains(answer, "18 janvier 2026") {
		t.Errorf("answer lost the date: %q", answer)
	}
	// The model must have seen the relevant chunk in its system prompt.
	if !strings.Contains(provider.lastSystemPrompt(), "18 janvier 2026") {
		t.Error("retrieved chunk missing from system prompt")
	}
}

func TestAskContextBudgetDropsLowestRelevanceFirst(t *testing.T) {
	top := "Chunk pertinent sur la finale de la CAN."
	filler := strings.Repeat("Remplissage sans rapport avec la question posée. ", 10)
	store := newTestStore(t, top, filler)

	provider := &scriptedProvider{content: "ok"}
	// Budget fits only the top chunk.
	engine := NewEngine(store, fakeEmbedder{}, provider, Options{TopK: 4, MaxContextChars: len(top) + 10})

	if _, _, err := engine.Ask(context.Background(), nil, top); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	sys := provider.lastSystemPrompt()
	if !strings.Contains(sys, top) {
		t.Error("top chunk missing from context")
	}
	if strings.Contains(sys, "Remplissage") {
		t.Error("lower-relevance chunk should have been dropped to fit the budget")
	}
}

func TestAskProviderErrorIsNeverARefusal(t *testing.T) {
	store := newTestStore(t, "Un seul chunk dans l'index.")
	provider := &scriptedProvider{err: errors.New("quota exceeded")}
	engine := NewEngine(store, fakeEmbedder{}, provider, Options{TopK: 2, MaxContextChars: 8000})

	answer, _, err := engine.Ask(context.Background(), nil, "Un seul chunk dans l'index.")
	if err == nil {
		t.Fatal("expected error from failing provider")
	}
	for _, refusal := range []string{RefusalDefault, RefusalSummary, RefusalStatistics} {
		if answer == refusal || strings.Contains(err.Error(), refusal) {
			t.Error("infrastructure failure surfaced as a refusal phrase")
		}
	}
}

func TestSearchReturnsRankedChunks(t *testing.T) {
	store := newTestStore(t,
		"Les groupes de la CAN 2025 ont été tirés au sort.",
		"Le calendrier complet des matchs est publié.",
	)
	engine := NewEngine(store, fakeEmbedder{}, &scriptedProvider{}, Options{})

	results, err := engine.Search(context.Background(), "Les groupes de la CAN 2025 ont été tirés au sort.", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !strings.Contains(results[0].Entry.Text, "groupes") {
		t.Errorf("wrong chunk retrieved: %q", results[0].Entry.Text)
	}
}
