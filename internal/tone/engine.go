package tone

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"texttoner/internal/llm"
)

// BackendState tracks the lifecycle of the shared model backend.
type BackendState int

const (
	StateUnloaded BackendState = iota
	StateLoading
	StateReady
)

// String implements fmt.Stringer.
func (s BackendState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unloaded"
	}
}

// Result is the outcome of analyzing a text.
type Result struct {
	Tone         Label  `json:"tone"`
	ImprovedText string `json:"improved_text"`
}

// Config holds engine tuning parameters.
type Config struct {
	// MaxTextLength bounds the preprocessed input, in characters.
	MaxTextLength int
	// InferTimeout bounds the wall-clock time of a single backend call.
	InferTimeout time.Duration
	// MaxConcurrent bounds in-flight backend calls across all requests.
	MaxConcurrent int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MaxTextLength: 512,
		InferTimeout:  30 * time.Second,
		MaxConcurrent: 4,
	}
}

// Engine runs the tone analysis pipeline: preprocess, detect, rewrite.
// Its Analyze contract is total: it never returns an error; every failure
// mode degrades to the friendly tone and the unchanged input text.
type Engine struct {
	backend llm.Backend
	cfg     Config
	log     *slog.Logger

	// loadMu serializes load attempts so concurrent first callers trigger
	// at most one backend load. stateMu guards state for observers.
	loadMu  sync.Mutex
	stateMu sync.RWMutex
	state   BackendState

	// sem bounds concurrent inference calls.
	sem chan struct{}
}

// NewEngine creates an engine around an injected backend handle. The backend
// is loaded lazily on first use; see EnsureLoaded.
func NewEngine(backend llm.Backend, cfg Config, log *slog.Logger) *Engine {
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = 512
	}
	if cfg.InferTimeout <= 0 {
		cfg.InferTimeout = 30 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		backend: backend,
		cfg:     cfg,
		log:     log,
		sem:     make(chan struct{}, cfg.MaxConcurrent),
	}
}

// State reports the backend lifecycle state.
func (e *Engine) State() BackendState {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

// Ready reports whether the backend has been loaded.
func (e *Engine) Ready() bool {
	return e.State() == StateReady
}

func (e *Engine) setState(s BackendState) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

// EnsureLoaded loads the backend if it is not already loaded. A failed load
// returns the engine to the unloaded state so the next caller retries; a
// successful load is permanent for the process lifetime.
func (e *Engine) EnsureLoaded(ctx context.Context) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	if e.State() == StateReady {
		return nil
	}

	e.setState(StateLoading)
	e.log.Info("loading model backend")
	if err := e.backend.Load(ctx); err != nil {
		e.setState(StateUnloaded)
		e.log.Error("backend load failed", "error", err)
		return err
	}
	e.setState(StateReady)
	e.log.Info("model backend ready")
	return nil
}

// invoke runs one backend generation under the concurrency semaphore and
// the per-call timeout.
func (e *Engine) invoke(ctx context.Context, prompt string, params llm.DecodingParams) (string, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-e.sem }()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.InferTimeout)
	defer cancel()

	return e.backend.Generate(ctx, prompt, params)
}

// Detect classifies the emotional tone of text. It always returns a valid
// label: a backend failure yields the friendly default, and a backend answer
// naming no label falls back to the keyword classifier over the input text.
func (e *Engine) Detect(ctx context.Context, text string) Label {
	answer, err := e.invoke(ctx, detectionPrompt(text), llm.DecodingParams{
		Deterministic: true,
		NumBeams:      2,
		MaxNewTokens:  50,
		EarlyStopping: true,
	})
	if err != nil {
		e.log.Warn("tone detection backend call failed", "error", err)
		return DefaultLabel
	}
	if label, ok := parseAnswer(answer); ok {
		return label
	}
	return classifyByKeywords(text)
}

// Rewrite produces a tone-preserving rewrite of text. Degenerate output
// (a backend failure, a rewrite shorter than half the input, or an echo of
// the input) yields the input unchanged.
func (e *Engine) Rewrite(ctx context.Context, text string, label Label) string {
	maxNew := len(text) + 100
	if maxNew > 512 {
		maxNew = 512
	}

	out, err := e.invoke(ctx, rewritePrompt(label, text), llm.DecodingParams{
		NumBeams:      3,
		MaxNewTokens:  maxNew,
		Temperature:   0.7,
		TopP:          0.9,
		EarlyStopping: true,
	})
	if err != nil {
		e.log.Warn("rewrite backend call failed", "error", err)
		return text
	}

	out = strings.TrimSpace(out)
	if len(out)*2 < len(text) || strings.EqualFold(out, text) {
		return text
	}
	return out
}

// Analyze runs the full pipeline and always returns a well-formed result.
// Backend trouble never surfaces to the caller; it degrades to the friendly
// tone and the unchanged (preprocessed) input.
func (e *Engine) Analyze(ctx context.Context, text string) (result Result) {
	normalized := Preprocess(text, e.cfg.MaxTextLength)
	result = Result{Tone: DefaultLabel, ImprovedText: normalized}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("tone analysis panicked", "panic", r)
			result = Result{Tone: DefaultLabel, ImprovedText: normalized}
		}
	}()

	if err := e.EnsureLoaded(ctx); err != nil {
		return result
	}

	label := e.Detect(ctx, normalized)
	rewritten := e.Rewrite(ctx, normalized, label)

	return Result{Tone: label, ImprovedText: rewritten}
}
