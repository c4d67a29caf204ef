package enrich

import "context"

// Provider is one AI backend able to run both enrichment tasks.
type Provider interface {
	Name() string
	ModelVersion() string
	Classify(ctx context.Context, in Input) (*Classification, error)
	ExtractLocations(ctx context.Context, in Input) (*Extraction, error)
}

// NoProviderError indicates no AI backend has credentials configured.
type NoProviderError struct{}

func (*NoProviderError) Error() string {
	return "no AI provider configured: set an Anthropic or OpenAI API key"
}

// ProviderStatus describes one backend for operator-facing reporting.
type ProviderStatus struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Configured bool   `json:"configured"`
	Active     bool   `json:"active"`
}

// Selector picks the active provider by fixed priority. Entries may be nil
// for backends without credentials; priority is re-evaluated on every call
// so a selector built once stays correct as a value object.
type Selector struct {
	entries []selectorEntry
}

type selectorEntry struct {
	name     string
	model    string
	provider Provider // nil when unconfigured
}

// NewSelector registers backends in priority order.
func NewSelector() *Selector {
	return &Selector{}
}

// Register adds a backend slot. A nil provider records an unconfigured
// backend so status reporting still lists it.
func (s *Selector) Register(name, model string, p Provider) {
	s.entries = append(s.entries, selectorEntry{name: name, model: model, provider: p})
}

// Active returns the highest-priority configured provider.
func (s *Selector) Active() (Provider, error) {
	for _, e := range s.entries {
		if e.provider != nil {
			return e.provider, nil
		}
	}
	return nil, &NoProviderError{}
}

// Status reports every registered backend and which one is active.
func (s *Selector) Status() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(s.entries))
	activeSeen := false
	for _, e := range s.entries {
		configured := e.provider != nil
		active := configured && !activeSeen
		if active {
			activeSeen = true
		}
		out = append(out, ProviderStatus{
			Name:       e.name,
			Model:      e.model,
			Configured: configured,
			Active:     active,
		})
	}
	return out
}
