package tone

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texttoner/internal/llm"
)

// fakeBackend is a scriptable llm.Backend for engine tests.
type fakeBackend struct {
	mu        sync.Mutex
	loadCalls int
	loadErr   error
	loadDelay time.Duration

	generate func(prompt string, params llm.DecodingParams) (string, error)
}

func (f *fakeBackend) Load(ctx context.Context) error {
	f.mu.Lock()
	f.loadCalls++
	err := f.loadErr
	delay := f.loadDelay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeBackend) LoadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadCalls
}

func (f *fakeBackend) Generate(ctx context.Context, prompt string, params llm.DecodingParams) (string, error) {
	if f.generate == nil {
		return "", errors.New("no generate script")
	}
	return f.generate(prompt, params)
}

// scripted builds a backend that answers detection prompts with answer and
// rewrite prompts with rewrite.
func scripted(answer, rewrite string) *fakeBackend {
	return &fakeBackend{
		generate: func(prompt string, params llm.DecodingParams) (string, error) {
			if strings.HasPrefix(prompt, "Classify") {
				return answer, nil
			}
			return rewrite, nil
		},
	}
}

func newTestEngine(backend llm.Backend) *Engine {
	return NewEngine(backend, DefaultConfig(), nil)
}

func TestAnalyzePipeline(t *testing.T) {
	e := newTestEngine(scripted("sad", "I am so sorry that I missed your birthday."))

	result := e.Analyze(context.Background(), "  sorry i missd ur bday  ")

	assert.Equal(t, LabelSad, result.Tone)
	assert.Equal(t, "I am so sorry that I missed your birthday.", result.ImprovedText)
	assert.True(t, e.Ready())
}

func TestAnalyzeLoadFailure(t *testing.T) {
	backend := &fakeBackend{loadErr: errors.New("model unavailable")}
	e := newTestEngine(backend)

	result := e.Analyze(context.Background(), "  I hate this  ")

	assert.Equal(t, DefaultLabel, result.Tone)
	assert.Equal(t, "I hate this", result.ImprovedText)
	assert.Equal(t, StateUnloaded, e.State())
}

func TestAnalyzeLoadFailureIsRetryable(t *testing.T) {
	backend := scripted("angry", "I strongly dislike this situation and want it fixed.")
	backend.loadErr = errors.New("model unavailable")
	e := newTestEngine(backend)

	require.Error(t, e.EnsureLoaded(context.Background()))
	assert.Equal(t, StateUnloaded, e.State())

	backend.mu.Lock()
	backend.loadErr = nil
	backend.mu.Unlock()

	require.NoError(t, e.EnsureLoaded(context.Background()))
	assert.Equal(t, StateReady, e.State())

	result := e.Analyze(context.Background(), "I hate this")
	assert.Equal(t, LabelAngry, result.Tone)
}

func TestEnsureLoadedConcurrent(t *testing.T) {
	backend := scripted("friendly", "ok")
	backend.loadDelay = 20 * time.Millisecond
	e := newTestEngine(backend)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.EnsureLoaded(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, backend.LoadCalls())
	assert.True(t, e.Ready())
}

func TestEnsureLoadedIdempotent(t *testing.T) {
	backend := scripted("friendly", "ok")
	e := newTestEngine(backend)

	require.NoError(t, e.EnsureLoaded(context.Background()))
	require.NoError(t, e.EnsureLoaded(context.Background()))

	assert.Equal(t, 1, backend.LoadCalls())
}

func TestAnalyzeBackendErrors(t *testing.T) {
	backend := &fakeBackend{
		generate: func(prompt string, params llm.DecodingParams) (string, error) {
			return "", errors.New("inference failed")
		},
	}
	e := newTestEngine(backend)

	result := e.Analyze(context.Background(), "I'm disappointed in you")

	assert.Equal(t, DefaultLabel, result.Tone)
	assert.Equal(t, "I'm disappointed in you", result.ImprovedText)
}

func TestAnalyzeTruncatesLongInput(t *testing.T) {
	backend := &fakeBackend{
		generate: func(prompt string, params llm.DecodingParams) (string, error) {
			return "", errors.New("inference failed")
		},
	}
	e := newTestEngine(backend)

	long := strings.Repeat("a", 600)
	result := e.Analyze(context.Background(), long)

	assert.Len(t, result.ImprovedText, 512)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		text   string
		want   Label
	}{
		{name: "direct answer", answer: "angry", text: "whatever", want: LabelAngry},
		{name: "answer in sentence", answer: "This text is sad.", text: "whatever", want: LabelSad},
		{name: "unparseable falls back to keywords", answer: "neutral", text: "I could cry", want: LabelSad},
		{name: "unparseable and no keywords", answer: "neutral", text: "see you soon", want: LabelFriendly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(scripted(tt.answer, "unused"))
			got := e.Detect(context.Background(), tt.text)
			if got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectUsesDeterministicDecoding(t *testing.T) {
	var captured llm.DecodingParams
	backend := &fakeBackend{
		generate: func(prompt string, params llm.DecodingParams) (string, error) {
			captured = params
			return "friendly", nil
		},
	}
	e := newTestEngine(backend)

	e.Detect(context.Background(), "hello")

	assert.True(t, captured.Deterministic)
	assert.Equal(t, 2, captured.NumBeams)
	assert.Equal(t, 50, captured.MaxNewTokens)
}

func TestDetectBackendError(t *testing.T) {
	backend := &fakeBackend{
		generate: func(prompt string, params llm.DecodingParams) (string, error) {
			return "", errors.New("timeout")
		},
	}
	e := newTestEngine(backend)

	// Even clearly angry text degrades to the default when the backend fails.
	got := e.Detect(context.Background(), "I am furious")
	assert.Equal(t, DefaultLabel, got)
}

func TestRewrite(t *testing.T) {
	input := "thanks for helping me out yesterday"

	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "good rewrite kept",
			output: "Thank you so much for helping me out yesterday.",
			want:   "Thank you so much for helping me out yesterday.",
		},
		{
			name:   "too short rejected",
			output: "Thanks.",
			want:   input,
		},
		{
			name:   "exact echo rejected",
			output: input,
			want:   input,
		},
		{
			name:   "case insensitive echo rejected",
			output: strings.ToUpper(input),
			want:   input,
		},
		{
			name:   "whitespace trimmed",
			output: "  Thank you so much for helping me out yesterday.  ",
			want:   "Thank you so much for helping me out yesterday.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(scripted("friendly", tt.output))
			got := e.Rewrite(context.Background(), input, LabelFriendly)
			if got != tt.want {
				t.Errorf("Rewrite() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteHalfLengthBoundary(t *testing.T) {
	// An output of exactly half the input length is kept.
	input := strings.Repeat("a", 10)
	half := strings.Repeat("b", 5)

	e := newTestEngine(scripted("friendly", half))
	assert.Equal(t, half, e.Rewrite(context.Background(), input, LabelFriendly))

	justUnder := strings.Repeat("b", 4)
	e = newTestEngine(scripted("friendly", justUnder))
	assert.Equal(t, input, e.Rewrite(context.Background(), input, LabelFriendly))
}

func TestRewriteBackendError(t *testing.T) {
	backend := &fakeBackend{
		generate: func(prompt string, params llm.DecodingParams) (string, error) {
			return "", errors.New("timeout")
		},
	}
	e := newTestEngine(backend)

	got := e.Rewrite(context.Background(), "hello there", LabelFriendly)
	assert.Equal(t, "hello there", got)
}

func TestRewriteCapsGeneration(t *testing.T) {
	var captured llm.DecodingParams
	record := func(prompt string, params llm.DecodingParams) (string, error) {
		captured = params
		return "a long enough rewritten sentence for the guard", nil
	}

	e := newTestEngine(&fakeBackend{generate: record})
	e.Rewrite(context.Background(), strings.Repeat("a", 30), LabelFriendly)
	assert.Equal(t, 130, captured.MaxNewTokens)

	e = newTestEngine(&fakeBackend{generate: record})
	e.Rewrite(context.Background(), strings.Repeat("a", 500), LabelFriendly)
	assert.Equal(t, 512, captured.MaxNewTokens)
}

func TestAnalyzeRecoversFromPanic(t *testing.T) {
	backend := &fakeBackend{
		generate: func(prompt string, params llm.DecodingParams) (string, error) {
			panic("backend bug")
		},
	}
	e := newTestEngine(backend)

	result := e.Analyze(context.Background(), "  hello  ")

	assert.Equal(t, DefaultLabel, result.Tone)
	assert.Equal(t, "hello", result.ImprovedText)
}

func TestAnalyzeDeterministicForSameInput(t *testing.T) {
	e := newTestEngine(scripted("sad", "A consistently improved sad sentence about loss."))

	first := e.Analyze(context.Background(), "i am sorry for your loss")
	second := e.Analyze(context.Background(), "i am sorry for your loss")

	assert.Equal(t, first, second)
}

func TestInvokeRespectsContextCancellation(t *testing.T) {
	e := NewEngine(scripted("friendly", "ok"), Config{MaxConcurrent: 1}, nil)

	// Occupy the only semaphore slot.
	e.sem <- struct{}{}
	defer func() { <-e.sem }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.invoke(ctx, "prompt", llm.DecodingParams{})
	require.ErrorIs(t, err, context.Canceled)
}
