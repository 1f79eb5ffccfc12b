package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"diagnosis-backend/internal/catalog"
	"diagnosis-backend/internal/diagnosis"
	"diagnosis-backend/internal/llm"
	"diagnosis-backend/internal/llm/gemini"
	openai "diagnosis-backend/internal/llm/openai"
	"diagnosis-backend/internal/shared/config"
	localstore "diagnosis-backend/internal/shared/storage/object/local"
)

type options struct {
	catalogPath string
	answersPath string
	validate    bool
	provider    string
	model       string
	timeout     time.Duration
	strict      bool
}

type output struct {
	CatalogVersion string            `json:"catalogVersion"`
	Outcome        string            `json:"enrichment"`
	Result         *diagnosis.Result `json:"result,omitempty"`
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "diagnose",
		Short:         "Run a fatigue diagnosis against a catalogue",
		Long:          "Reads an answers JSON object (file or stdin) and prints the diagnosis result.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.catalogPath, "catalog", "", "catalogue file (.json, .yaml); the built-in catalogue when empty")
	f.StringVar(&opts.answersPath, "answers", "-", "answers JSON file, - for stdin")
	f.BoolVar(&opts.validate, "validate", false, "only validate the catalogue")
	f.StringVar(&opts.provider, "provider", config.ProviderNone, "narrative provider: none, gemini or openai")
	f.StringVar(&opts.model, "model", "", "provider model override")
	f.DurationVar(&opts.timeout, "timeout", 20*time.Second, "enrichment timeout")
	f.BoolVar(&opts.strict, "strict", false, "reject answers that do not match the question bank")
	return cmd
}

func run(ctx context.Context, opts *options, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ds, err := loadCatalog(ctx, opts.catalogPath)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if opts.validate {
		return enc.Encode(output{CatalogVersion: ds.Version, Outcome: string(diagnosis.OutcomeSkipped)})
	}

	answers, err := readAnswers(opts.answersPath, stdin)
	if err != nil {
		return err
	}
	if opts.strict {
		if err := diagnosis.ValidateAnswers(ds, answers); err != nil {
			return err
		}
	}

	client, closeClient, err := newClient(ctx, opts)
	if err != nil {
		return err
	}
	defer closeClient()

	var enricher *diagnosis.Enricher
	if client != nil {
		enricher = &diagnosis.Enricher{Client: client, Provider: opts.provider, Timeout: opts.timeout}
	}
	engine := diagnosis.NewEngine(ds, enricher)
	base, err := engine.Base(answers)
	if err != nil {
		return err
	}
	res, outcome := enricher.Enrich(ctx, base, answers)
	return enc.Encode(output{CatalogVersion: ds.Version, Outcome: string(outcome), Result: &res})
}

func loadCatalog(ctx context.Context, path string) (*catalog.Dataset, error) {
	if path == "" {
		return catalog.Load(ctx, catalog.EmbeddedSource{})
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	src := catalog.ObjectSource{
		Store: localstore.New(filepath.Dir(abs)),
		Key:   filepath.Base(abs),
	}
	return catalog.Load(ctx, src)
}

func readAnswers(path string, stdin io.Reader) (diagnosis.Answers, error) {
	r := stdin
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var answers diagnosis.Answers
	if err := json.NewDecoder(r).Decode(&answers); err != nil {
		if err == io.EOF {
			return diagnosis.Answers{}, nil
		}
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return answers, nil
}

func newClient(ctx context.Context, opts *options) (llm.Client, func(), error) {
	noop := func() {}
	switch opts.provider {
	case config.ProviderGemini:
		c, err := gemini.New(ctx, os.Getenv("GEMINI_API_KEY"), opts.model)
		if err != nil {
			return nil, noop, err
		}
		return c, func() { _ = c.Close() }, nil
	case config.ProviderOpenAI:
		c, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), opts.model, opts.timeout)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil
	case config.ProviderNone, "":
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown provider %q", opts.provider)
	}
}
