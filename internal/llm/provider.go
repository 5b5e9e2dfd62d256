package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/semaphore"
)

// Prompt is the instruction payload for one generation call.
type Prompt struct {
	System string
	User   string
}

// Flat renders the prompt as a single instruction text for models without
// role-structured messaging.
func (p Prompt) Flat() string {
	if p.System == "" {
		return p.User
	}
	return p.System + "\n\n" + p.User
}

// Params are generation parameters passed through to the backend.
type Params struct {
	MaxTokens     int
	Temperature   float64
	Stop          []string
	RepeatPenalty float64
}

// Generator is the text-generation capability consumed by the analyzer.
type Generator interface {
	Generate(ctx context.Context, p Prompt, params Params) (string, error)
	// Chat reports whether prompts are sent as role-structured messages.
	Chat() bool
	Name() string
}

// Mode selects how prompts are delivered to the model.
type Mode string

const (
	ModeAuto       Mode = "auto"
	ModeChat       Mode = "chat"
	ModeCompletion Mode = "completion"
)

// Options configure Load.
type Options struct {
	Backend     string
	Host        string
	Model       string
	Mode        Mode
	Threads     int
	ContextSize int
	APIKey      string
	// Timeout bounds one HTTP call. Zero means no timeout.
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	Logger    hclog.Logger
}

// backend is implemented by each supported model server.
type backend interface {
	name() string
	// probe checks that the model is available and reports whether it
	// supports role-structured chat.
	probe(ctx context.Context) (chat bool, err error)
	chat(ctx context.Context, p Prompt, params Params) (string, error)
	complete(ctx context.Context, prompt string, params Params) (string, error)
}

// Model is the long-lived model handle. It is acquired once per run and
// allows one in-flight generation call at a time.
type Model struct {
	backend backend
	model   string
	chat    bool
	sem     *semaphore.Weighted
	logger  hclog.Logger
}

// Load acquires a model handle for the configured backend. The chat/completion
// variant is decided here, once.
func Load(ctx context.Context, opts Options) (*Model, error) {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Model == "" {
		return nil, &LoadError{Backend: opts.Backend, Err: fmt.Errorf("no model configured")}
	}

	var b backend
	var err error
	switch strings.ToLower(opts.Backend) {
	case BackendOllama:
		b = newOllama(opts)
	case "", BackendLlamaCpp, "llama.cpp", "llama-server":
		b, err = newLlamaCpp(opts)
	default:
		err = fmt.Errorf("unknown backend: %s", opts.Backend)
	}
	if err != nil {
		return nil, &LoadError{Backend: opts.Backend, Model: opts.Model, Err: err}
	}

	chat, err := b.probe(ctx)
	if err != nil {
		return nil, &LoadError{Backend: b.name(), Model: opts.Model, Err: err}
	}
	switch opts.Mode {
	case ModeChat:
		chat = true
	case ModeCompletion:
		chat = false
	case "", ModeAuto:
	default:
		return nil, &LoadError{Backend: b.name(), Model: opts.Model, Err: fmt.Errorf("unknown mode: %s", opts.Mode)}
	}

	opts.Logger.Debug("model loaded", "backend", b.name(), "model", opts.Model, "chat", chat)

	return &Model{
		backend: b,
		model:   opts.Model,
		chat:    chat,
		sem:     semaphore.NewWeighted(1),
		logger:  opts.Logger,
	}, nil
}

// Generate runs one generation call. Calls are serialized.
func (m *Model) Generate(ctx context.Context, p Prompt, params Params) (string, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer m.sem.Release(1)

	var text string
	var err error
	if m.chat {
		text, err = m.backend.chat(ctx, p, params)
	} else {
		text, err = m.backend.complete(ctx, p.Flat(), params)
	}
	if err != nil {
		m.logger.Trace("generation failed", "backend", m.backend.name(), "error", err)
		return "", err
	}
	return text, nil
}

// Chat reports whether the model takes role-structured messages.
func (m *Model) Chat() bool { return m.chat }

// Name returns the backend name.
func (m *Model) Name() string { return m.backend.name() }

// ModelName returns the configured model.
func (m *Model) ModelName() string { return m.model }
