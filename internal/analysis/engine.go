package analysis

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/dshills/vuln-analyzer/internal/cache"
	"github.com/dshills/vuln-analyzer/internal/llm"
)

// Options configure an Analyzer.
type Options struct {
	Chunker     Chunker
	Parser      Parser
	Rules       *Rules
	NumberLines bool
	Params      llm.Params
	// ModelName is part of the cache key.
	ModelName string
	Cache     *cache.Cache
	Logger    hclog.Logger
	// Raw, when set, receives every raw model response.
	Raw io.Writer
}

// Analyzer runs the per-file pipeline against one long-lived model handle.
type Analyzer struct {
	gen   llm.Generator
	opts  Options
	runID string
}

// New creates an Analyzer. The generator must already be loaded.
func New(gen llm.Generator, opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Analyzer{gen: gen, opts: opts, runID: uuid.NewString()}
}

// RunID identifies this run in every report.
func (a *Analyzer) RunID() string { return a.runID }

// Run analyzes each path in order and returns one Result per path. File
// failures are recorded in the Result and do not stop the run.
func (a *Analyzer) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	a.RunEach(ctx, paths, func(r Result) {
		results = append(results, r)
	})
	return results
}

// RunEach is Run with results delivered as each file completes.
func (a *Analyzer) RunEach(ctx context.Context, paths []string, fn func(Result)) {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			fn(Result{Path: path, Err: err})
			continue
		}
		report, err := a.AnalyzeFile(ctx, path)
		if err != nil {
			a.opts.Logger.Warn("file skipped", "path", path, "error", err)
		}
		fn(Result{Path: path, Report: report, Err: err})
	}
}

// AnalyzeFile reads one file and runs it through the pipeline. The only
// error returned is a *FileError for a file that could not be read.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Report, error) {
	start := time.Now()
	src, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	report := a.AnalyzeSource(ctx, src)
	report.Timing.TotalMs = elapsedMs(start)
	return report, nil
}

// AnalyzeSource chunks an already-read file, queries the model once per
// chunk and aggregates the findings. A chunk whose generation fails
// contributes nothing and is counted in FailedChunks.
func (a *Analyzer) AnalyzeSource(ctx context.Context, src SourceFile) *Report {
	start := time.Now()
	log := a.opts.Logger.With("path", src.Path)

	chunks := a.opts.Chunker.Split(src.Lines)
	builder := PromptBuilder{Path: src.Path, Rules: a.opts.Rules, NumberLines: a.opts.NumberLines}

	var all []Finding
	var failed int
	var llmMs int64
	for _, c := range chunks {
		lines := fmt.Sprintf("%d-%d", c.StartLine, c.EndLine)

		llmStart := time.Now()
		raw, err := a.generate(ctx, builder.Build(c))
		llmMs += elapsedMs(llmStart)
		if err != nil {
			failed++
			log.Warn("generation failed", "chunk", c.Index, "lines", lines, "error", err)
			continue
		}
		if a.opts.Raw != nil {
			fmt.Fprintf(a.opts.Raw, "--- %s lines %s ---\n%s\n", src.Path, lines, raw)
		}

		found := a.opts.Parser.Parse(raw)
		log.Debug("chunk analyzed", "chunk", c.Index, "lines", lines, "findings", len(found))
		all = append(all, found...)
	}

	return &Report{
		Path:         src.Path,
		RunID:        a.runID,
		Findings:     Aggregate(all),
		Chunks:       len(chunks),
		FailedChunks: failed,
		Timing: Timing{
			LLMMs:   llmMs,
			TotalMs: elapsedMs(start),
		},
	}
}

// generate calls the model, consulting the response cache first.
func (a *Analyzer) generate(ctx context.Context, p llm.Prompt) (string, error) {
	params := a.opts.Params
	key := cache.BuildCacheKey(
		fmt.Sprintf("%s/chat=%t", a.gen.Name(), a.gen.Chat()), a.opts.ModelName,
		p.System+"\x00"+p.User, params.MaxTokens, params.Temperature, params.RepeatPenalty, params.Stop)
	if raw, ok := a.opts.Cache.Get(key); ok {
		a.opts.Logger.Debug("cache hit")
		return raw, nil
	}
	raw, err := a.gen.Generate(ctx, p, params)
	if err != nil {
		return "", err
	}
	a.opts.Cache.Put(key, raw)
	return raw, nil
}
