package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// ollama talks to an Ollama server through its native API, which accepts
// sampling and runtime options per request.
type ollama struct {
	model   string
	threads int
	ctxSize int
	client  *resty.Client
}

func newOllama(opts Options) *ollama {
	return &ollama{
		model:   opts.Model,
		threads: opts.Threads,
		ctxSize: opts.ContextSize,
		client:  newRestClient(ResolveHost(BackendOllama, opts.Host), opts),
	}
}

func (o *ollama) name() string { return BackendOllama }

type ollamaOptions struct {
	NumPredict    int      `json:"num_predict,omitempty"`
	Temperature   float64  `json:"temperature"`
	Stop          []string `json:"stop,omitempty"`
	RepeatPenalty float64  `json:"repeat_penalty,omitempty"`
	NumThread     int      `json:"num_thread,omitempty"`
	NumCtx        int      `json:"num_ctx,omitempty"`
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Raw     bool          `json:"raw"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

func (o *ollama) options(params Params) ollamaOptions {
	return ollamaOptions{
		NumPredict:    params.MaxTokens,
		Temperature:   params.Temperature,
		Stop:          params.Stop,
		RepeatPenalty: params.RepeatPenalty,
		NumThread:     o.threads,
		NumCtx:        o.ctxSize,
	}
}

// probe asks the server for the model's metadata. A model with a chat
// template takes role-structured messages.
func (o *ollama) probe(ctx context.Context) (bool, error) {
	body, err := post(ctx, o.client, "/api/show", map[string]string{"model": o.model})
	if err != nil {
		var ge *GenerationError
		if errors.As(err, &ge) && ge.StatusCode == http.StatusNotFound {
			return false, fmt.Errorf("%w: %s (try `ollama pull %s`)", ErrModelNotFound, o.model, o.model)
		}
		return false, err
	}
	return gjson.GetBytes(body, "template").String() != "", nil
}

func (o *ollama) chat(ctx context.Context, p Prompt, params Params) (string, error) {
	body, err := post(ctx, o.client, "/api/chat", ollamaChatRequest{
		Model:    o.model,
		Messages: messagesFor(p),
		Options:  o.options(params),
	})
	if err != nil {
		return "", err
	}
	return extractText(body, "message.content")
}

func (o *ollama) complete(ctx context.Context, prompt string, params Params) (string, error) {
	body, err := post(ctx, o.client, "/api/generate", ollamaGenerateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Raw:     true,
		Options: o.options(params),
	})
	if err != nil {
		return "", err
	}
	return extractText(body, "response")
}
