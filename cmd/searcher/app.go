package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	corpusPath string
	policyName string
	strict     bool

	cfg      *config.Config
	policy   searcher.Policy
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "searcher",
		Short:         "Index a document corpus in memory and query it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to YAML config file")
	flags.StringVarP(&a.corpusPath, "corpus", "f", "", "path to YAML corpus file (overrides search.corpusFile)")
	flags.StringVarP(&a.policyName, "policy", "p", "", "ranking policy: sequential or parallel (overrides search.policy)")
	flags.BoolVar(&a.strict, "strict", false, "fail on the first rejected document")

	cmd.AddCommand(
		newQueryCommand(a),
		newMatchCommand(a),
		newDedupCommand(a),
		newCheckCommand(a),
		newBenchCommand(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.policyName != "" {
		cfg.Search.Policy = a.policyName
	}
	if a.corpusPath != "" {
		cfg.Search.CorpusFile = a.corpusPath
	}
	a.policy, err = searcher.ParsePolicy(cfg.Search.Policy)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)
	slog.Debug("configuration loaded",
		"policy", a.policy.String(),
		"corpus", cfg.Search.CorpusFile,
		"metrics", cfg.Metrics.Enabled,
	)
	return nil
}

// load builds a server from the configured corpus file. Stop words in the
// corpus take precedence over configured ones, which take precedence over
// tokenizer.DefaultStopWords. An explicitly empty list disables them.
func (a *app) load(ctx context.Context, opts ...searcher.Option) (*searcher.Server, *ingestion.Corpus, error) {
	if a.cfg.Search.CorpusFile == "" {
		return nil, nil, apperrors.New(apperrors.ErrInvalidInput, "no corpus file given (use --corpus or search.corpusFile)")
	}
	corpus, err := loader.ReadFile(a.cfg.Search.CorpusFile)
	if err != nil {
		return nil, nil, err
	}
	stopWords := corpus.StopWords
	if stopWords == nil {
		stopWords = a.cfg.Search.StopWords
	}
	if stopWords == nil {
		stopWords = tokenizer.DefaultStopWords
	}
	server, err := searcher.New(stopWords, append([]searcher.Option{searcher.WithMetrics(a.metrics)}, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	if _, err := loader.Load(ctx, server, corpus, a.strict); err != nil {
		return nil, nil, err
	}
	if a.cfg.Search.RemoveDuplicates {
		server.RemoveDuplicates(ctx)
	}
	return server, corpus, nil
}

// finish dumps the metrics registry to stderr when enabled.
func (a *app) finish(cmd *cobra.Command) error {
	if !a.cfg.Metrics.Enabled {
		return nil
	}
	return metrics.WriteText(cmd.ErrOrStderr(), a.registry)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseStatusFlag(raw string) (index.Status, error) {
	status, err := validator.ResolveStatus(raw)
	if err != nil {
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, "--status: %v", err)
	}
	return status, nil
}

func queriesFrom(args []string, corpus *ingestion.Corpus) []string {
	if len(args) > 0 {
		return args
	}
	return corpus.Queries
}

func checkOutput(format string) error {
	switch format {
	case "json", "text":
		return nil
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, "unsupported output %q (expected json or text)", format)
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
