package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dshills/vuln-analyzer/internal/analysis"
	"github.com/dshills/vuln-analyzer/internal/cache"
	"github.com/dshills/vuln-analyzer/internal/config"
	"github.com/dshills/vuln-analyzer/internal/llm"
	"github.com/dshills/vuln-analyzer/internal/logger"
	"github.com/dshills/vuln-analyzer/internal/output"
	"github.com/dshills/vuln-analyzer/internal/sources"
)

// Shared model flags
var (
	flagConfig      string
	flagModel       string
	flagBackend     string
	flagHost        string
	flagMode        string
	flagTokens      int
	flagThreads     int
	flagCtx         int
	flagTemperature float64
	flagVerbose     bool
)

// Analyze flags
var (
	flagNoSplit    bool
	flagChunkWords int
	flagEstimator  string
	flagFormat     string
	flagOut        string
	flagRules      string
	flagAnchor     string
	flagSummary    bool
	flagGitTracked bool
	flagGitChanged string
	flagInclude    []string
	flagExclude    []string
)

func addModelFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().StringVar(&flagConfig, "config", "", "Config file path (default: user config dir)")
	cmd.Flags().StringVarP(&flagModel, "model", "m", d.Model, "Model to load (.gguf path for llamacpp, model name for ollama)")
	cmd.Flags().StringVar(&flagBackend, "backend", d.Backend, "Model server backend (llamacpp, ollama)")
	cmd.Flags().StringVar(&flagHost, "host", "", "Model server URL")
	cmd.Flags().StringVar(&flagMode, "mode", d.Mode, "Prompt mode (auto, chat, completion)")
	cmd.Flags().IntVarP(&flagTokens, "tokens", "t", d.Tokens, "Maximum tokens to generate per chunk")
	cmd.Flags().IntVarP(&flagThreads, "threads", "j", d.Threads, "Compute threads for the model")
	cmd.Flags().IntVar(&flagCtx, "ctx", d.Ctx, "Model context window size")
	cmd.Flags().Float64Var(&flagTemperature, "temperature", d.Temperature, "Sampling temperature")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Echo raw model output to stderr")
}

// flagKeys maps flags to the config keys they override.
var flagKeys = []struct{ flag, key string }{
	{"model", "model"},
	{"backend", "backend"},
	{"host", "host"},
	{"mode", "mode"},
	{"tokens", "tokens"},
	{"threads", "threads"},
	{"ctx", "ctx"},
	{"temperature", "temperature"},
	{"chunk-words", "chunkWords"},
	{"estimator", "estimator"},
	{"format", "format"},
	{"rules", "rulesFile"},
	{"anchor", "anchor"},
}

// buildOverrides returns config overrides for the flags the user set, so
// that flag defaults never mask the config file or environment.
func buildOverrides(cmd *cobra.Command) map[string]string {
	m := make(map[string]string)
	for _, fk := range flagKeys {
		f := cmd.Flags().Lookup(fk.flag)
		if f == nil || !f.Changed {
			continue
		}
		m[fk.key] = f.Value.String()
	}
	return m
}

// validateFlags rejects non-positive values for the size flags.
func validateFlags(cmd *cobra.Command) error {
	for _, name := range []string{"tokens", "threads", "ctx", "chunk-words"} {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		n, err := cmd.Flags().GetInt(name)
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("--%s must be a positive integer, got %d", name, n)
		}
	}
	return nil
}

// analyzeRun holds the per-invocation settings that are not part of Config.
type analyzeRun struct {
	Paths   []string
	NoSplit bool
	Verbose bool
	Summary bool
	Out     string
	Stdout  io.Writer
	Stderr  io.Writer
}

// selectPaths resolves the files to analyze from the arguments or git.
func selectPaths(args []string) ([]string, error) {
	opts := sources.Options{Include: flagInclude, Exclude: flagExclude}
	switch {
	case flagGitTracked:
		return sources.Tracked(opts)
	case flagGitChanged != "":
		return sources.Changed(flagGitChanged, opts)
	default:
		return sources.Expand(args, opts)
	}
}

func checkAnalyzeArgs(cmd *cobra.Command, args []string) error {
	gitSelect := flagGitTracked || flagGitChanged != ""
	if gitSelect && len(args) > 0 {
		return fmt.Errorf("file arguments cannot be combined with --git-tracked or --git-changed")
	}
	if flagGitTracked && flagGitChanged != "" {
		return fmt.Errorf("--git-tracked and --git-changed are mutually exclusive")
	}
	if !gitSelect && len(args) == 0 {
		return fmt.Errorf("requires at least one file or directory")
	}
	return nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|dir>...",
	Short: "Analyze C/C++ source files for vulnerabilities",
	Args:  checkAnalyzeArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFlags(cmd); err != nil {
			return err
		}
		cfg, err := config.Load(flagConfig, buildOverrides(cmd))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		paths, err := selectPaths(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(paths) == 0 {
			fmt.Fprintln(os.Stderr, "No C/C++ files selected")
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		exitCode = runAnalyze(ctx, cfg, analyzeRun{
			Paths:   paths,
			NoSplit: flagNoSplit,
			Verbose: flagVerbose,
			Summary: flagSummary,
			Out:     flagOut,
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
		})
		return nil
	},
}

// runAnalyze loads the model once, analyzes every path in order and writes
// the reports. It returns the process exit code.
func runAnalyze(ctx context.Context, cfg config.Config, ar analyzeRun) int {
	log := logger.NewWithOutput(cfg, appName, ar.Verbose, ar.Stderr)

	writer, err := output.GetWriter(cfg.Format)
	if err != nil {
		fmt.Fprintf(ar.Stderr, "Error: %v\n", err)
		return ExitRuntimeError
	}
	opts, err := analysisOptions(cfg, ar.NoSplit, log)
	if err != nil {
		fmt.Fprintf(ar.Stderr, "Error: %v\n", err)
		return ExitRuntimeError
	}
	if ar.Verbose {
		opts.Raw = ar.Stderr
	}

	model, err := loadModel(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(ar.Stderr, "Error: %v\n", err)
		if llm.IsLoadError(err) {
			return ExitModelError
		}
		return ExitRuntimeError
	}

	dest, closeOut, err := output.Open(ar.Out)
	if err != nil {
		fmt.Fprintf(ar.Stderr, "Error: %v\n", err)
		return ExitRuntimeError
	}
	if ar.Out == "" {
		dest = ar.Stdout
	}

	analyzer := analysis.New(model, opts)
	run := &output.Run{
		Tool:    appName,
		Version: version,
		RunID:   analyzer.RunID(),
		Backend: model.Name(),
		Model:   model.ModelName(),
	}
	log.Debug("starting run", "run_id", run.RunID, "files", len(ar.Paths), "chat", model.Chat())

	var writeErr error
	if s, ok := writer.(output.Streamer); ok {
		analyzer.RunEach(ctx, ar.Paths, func(r analysis.Result) {
			if writeErr == nil {
				writeErr = s.WriteResult(dest, r, len(run.Results))
			}
			run.Results = append(run.Results, r)
		})
	} else {
		run.Results = analyzer.Run(ctx, ar.Paths)
		writeErr = writer.Write(dest, run)
	}
	if err := closeOut(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		fmt.Fprintf(ar.Stderr, "Error writing output: %v\n", writeErr)
		return ExitRuntimeError
	}

	if ar.Summary {
		output.WriteSummary(ar.Stderr, run)
	}

	stats := opts.Cache.GetStats()
	log.Debug("run complete", "run_id", run.RunID, "files", len(run.Results),
		"cache_hits", stats.Hits, "cache_misses", stats.Misses)
	return ExitSuccess
}

// analysisOptions builds the Analyzer options from config.
func analysisOptions(cfg config.Config, noSplit bool, log hclog.Logger) (analysis.Options, error) {
	est, err := analysis.NewEstimator(cfg.Estimator)
	if err != nil {
		return analysis.Options{}, err
	}
	anchor, err := analysis.ParseAnchorPolicy(cfg.Anchor)
	if err != nil {
		return analysis.Options{}, err
	}
	rules, err := analysis.LoadRules(cfg.RulesFile)
	if err != nil {
		return analysis.Options{}, fmt.Errorf("loading rules: %w", err)
	}

	return analysis.Options{
		Chunker: analysis.Chunker{
			Estimator: est,
			Budget:    cfg.ChunkWords,
			NoSplit:   noSplit,
		},
		Parser:      analysis.Parser{Anchor: anchor},
		Rules:       rules,
		NumberLines: cfg.NumberLinesEnabled(),
		Params: llm.Params{
			MaxTokens:     cfg.Tokens,
			Temperature:   cfg.Temperature,
			Stop:          cfg.Stop,
			RepeatPenalty: cfg.RepeatPenalty,
		},
		ModelName: cfg.Model,
		Cache:     cache.New(cfg.CacheEnabled()),
		Logger:    log.Named("analysis"),
	}, nil
}

func init() {
	addModelFlags(analyzeCmd)

	d := config.Default()
	analyzeCmd.Flags().BoolVar(&flagNoSplit, "nosplit", false, "Send each file to the model as a single chunk")
	analyzeCmd.Flags().IntVar(&flagChunkWords, "chunk-words", d.ChunkWords, "Word budget per chunk")
	analyzeCmd.Flags().StringVar(&flagEstimator, "estimator", d.Estimator, "Chunk size estimator (words, chars)")
	analyzeCmd.Flags().StringVar(&flagFormat, "format", d.Format, "Output format (text, json, markdown, sarif)")
	analyzeCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path (YAML or JSON)")
	analyzeCmd.Flags().StringVar(&flagAnchor, "anchor", d.Anchor, "Line anchor for multi-line findings (first, each)")
	analyzeCmd.Flags().BoolVar(&flagSummary, "summary", false, "Print a per-file summary table to stderr")
	analyzeCmd.Flags().BoolVar(&flagGitTracked, "git-tracked", false, "Analyze every git-tracked C/C++ file")
	analyzeCmd.Flags().StringVar(&flagGitChanged, "git-changed", "", "Analyze C/C++ files changed since a git revision")
	analyzeCmd.Flags().StringSliceVar(&flagInclude, "include", nil, "Only analyze walked files matching these globs")
	analyzeCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "Skip walked files matching these globs")
}
