package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dshills/vuln-analyzer/internal/config"
	"github.com/dshills/vuln-analyzer/internal/llm"
	"github.com/dshills/vuln-analyzer/internal/logger"
)

// envAPIKey is sent as a bearer token when the model server requires one.
const envAPIKey = "VULN_ANALYZER_API_KEY"

var flagNoPing bool

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Model server management",
}

var modelCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the configured model and report its prompt mode",
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

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		exitCode = runModelCheck(ctx, cfg, !flagNoPing, os.Stdout, os.Stderr)
		return nil
	},
}

// runModelCheck loads the model and, when ping is set, runs one tiny
// generation to prove the server answers.
func runModelCheck(ctx context.Context, cfg config.Config, ping bool, stdout, stderr io.Writer) int {
	log := logger.NewWithOutput(cfg, appName, flagVerbose, stderr)

	fmt.Fprintf(stdout, "Checking %s model %s...\n", cfg.Backend, cfg.Model)

	model, err := loadModel(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "FAIL: %v\n", err)
		if llm.IsLoadError(err) {
			return ExitModelError
		}
		return ExitRuntimeError
	}

	mode := llm.ModeCompletion
	if model.Chat() {
		mode = llm.ModeChat
	}

	if ping {
		_, err := model.Generate(ctx, llm.Prompt{
			System: "Respond with exactly: ok",
			User:   "ping",
		}, llm.Params{MaxTokens: 8, Temperature: 0})
		if err != nil {
			fmt.Fprintf(stderr, "FAIL: %v\n", err)
			return ExitRuntimeError
		}
	}

	fmt.Fprintf(stdout, "OK: %s model %s is loaded (%s mode)\n", model.Name(), model.ModelName(), mode)
	return ExitSuccess
}

// loadModel acquires the long-lived model handle described by cfg.
func loadModel(ctx context.Context, cfg config.Config, log hclog.Logger) (*llm.Model, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return llm.Load(ctx, llm.Options{
		Backend:     cfg.Backend,
		Host:        cfg.Host,
		Model:       cfg.Model,
		Mode:        llm.Mode(cfg.Mode),
		Threads:     cfg.Threads,
		ContextSize: cfg.Ctx,
		APIKey:      os.Getenv(envAPIKey),
		Timeout:     timeout,
		Retries:     cfg.Retries,
		Logger:      log.Named("llm"),
	})
}

func init() {
	modelCmd.AddCommand(modelCheckCmd)
	addModelFlags(modelCheckCmd)
	modelCheckCmd.Flags().BoolVar(&flagNoPing, "no-ping", false, "Only load the model, skip the test generation")
}
