package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/tidwall/gjson"
)

// llamaCpp talks to a llama.cpp server. Thread count and context size are
// fixed when the server starts and cannot be set per request.
type llamaCpp struct {
	model  string
	client *resty.Client
	logger hclog.Logger
	opts   Options
}

func newLlamaCpp(opts Options) (*llamaCpp, error) {
	// A model given as a weights file must exist locally.
	if strings.EqualFold(filepath.Ext(opts.Model), ".gguf") {
		info, err := os.Stat(opts.Model)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelNotFound, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrModelNotFound, opts.Model)
		}
	}
	return &llamaCpp{
		model:  opts.Model,
		client: newRestClient(ResolveHost(BackendLlamaCpp, opts.Host), opts),
		logger: opts.Logger,
		opts:   opts,
	}, nil
}

func (l *llamaCpp) name() string { return BackendLlamaCpp }

// probe reads the server properties. A non-empty chat template means the
// loaded model takes role-structured messages.
func (l *llamaCpp) probe(ctx context.Context) (bool, error) {
	resp, err := l.client.R().SetContext(ctx).Get("/props")
	if err != nil {
		return false, fmt.Errorf("sending request: %w", err)
	}
	if resp.IsError() {
		return false, &GenerationError{StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	if l.opts.Threads > 0 || l.opts.ContextSize > 0 {
		l.logger.Debug("threads and context size are set at server start",
			"threads", l.opts.Threads, "ctx", l.opts.ContextSize)
	}
	return gjson.GetBytes(resp.Body(), "chat_template").String() != "", nil
}

type llamaChatRequest struct {
	Model         string        `json:"model,omitempty"`
	Messages      []chatMessage `json:"messages"`
	MaxTokens     int           `json:"max_tokens,omitempty"`
	Temperature   float64       `json:"temperature"`
	Stop          []string      `json:"stop,omitempty"`
	RepeatPenalty float64       `json:"repeat_penalty,omitempty"`
	Stream        bool          `json:"stream"`
}

type llamaCompletionRequest struct {
	Prompt        string   `json:"prompt"`
	NPredict      int      `json:"n_predict,omitempty"`
	Temperature   float64  `json:"temperature"`
	Stop          []string `json:"stop,omitempty"`
	RepeatPenalty float64  `json:"repeat_penalty,omitempty"`
	CachePrompt   bool     `json:"cache_prompt"`
	Stream        bool     `json:"stream"`
}

func (l *llamaCpp) chat(ctx context.Context, p Prompt, params Params) (string, error) {
	body, err := post(ctx, l.client, "/v1/chat/completions", llamaChatRequest{
		Model:         filepath.Base(l.model),
		Messages:      messagesFor(p),
		MaxTokens:     params.MaxTokens,
		Temperature:   params.Temperature,
		Stop:          params.Stop,
		RepeatPenalty: params.RepeatPenalty,
	})
	if err != nil {
		return "", err
	}
	return extractText(body, "choices.0.message.content")
}

func (l *llamaCpp) complete(ctx context.Context, prompt string, params Params) (string, error) {
	body, err := post(ctx, l.client, "/completion", llamaCompletionRequest{
		Prompt:        prompt,
		NPredict:      params.MaxTokens,
		Temperature:   params.Temperature,
		Stop:          params.Stop,
		RepeatPenalty: params.RepeatPenalty,
		CachePrompt:   true,
	})
	if err != nil {
		return "", err
	}
	return extractText(body, "content", "choices.0.text")
}
