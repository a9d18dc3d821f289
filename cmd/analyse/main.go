package main

// Analyse local documents without the HTTP layer:
//   go run ./cmd/analyse -file contrat.pdf -type CDI
//   go run ./cmd/analyse -payslip fiche.pdf -contract contrat.docx -hours 151

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"checkcontrat-backend/internal/checks"
	"checkcontrat-backend/internal/compliance"
	"checkcontrat-backend/internal/shared/config"
)

type options struct {
	file, payslip, contract string
	contractType            string
	hours                   int
	inputDir, outputDir     string
}

func main() {
	cfg := config.Load()
	opts, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	orch, err := compliance.NewFromConfig(compliance.Config{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.LLMModel,
		InputDir:  opts.inputDir,
		OutputDir: opts.outputDir,
		Location:  cfg.ReportLocation(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if cfg.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.AnalysisTimeout)
		defer cancel()
	}
	if err := run(ctx, orch, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, cfg config.Config) (options, error) {
	var opts options
	fs := flag.NewFlagSet("analyse", flag.ContinueOnError)
	fs.StringVar(&opts.file, "file", "", "contract to analyse on its own")
	fs.StringVar(&opts.payslip, "payslip", "", "payslip to compare with -contract")
	fs.StringVar(&opts.contract, "contract", "", "contract the payslip refers to")
	fs.StringVar(&opts.contractType, "type", "", "contract type used in the prompt (CDI, CDD, ...)")
	fs.IntVar(&opts.hours, "hours", -1, "declared worked hours for a payslip check")
	fs.StringVar(&opts.inputDir, "input-dir", cfg.InputDir, "directory holding the documents")
	fs.StringVar(&opts.outputDir, "output-dir", cfg.OutputDir, "directory receiving the report")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.hours < -1 {
		return options{}, fmt.Errorf("-hours must not be negative, got %d", opts.hours)
	}

	single := opts.file != ""
	paired := opts.payslip != "" || opts.contract != ""
	switch {
	case single && paired:
		return options{}, errors.New("use either -file or -payslip/-contract")
	case paired && (opts.payslip == "" || opts.contract == ""):
		return options{}, errors.New("-payslip and -contract go together")
	case !single && !paired:
		return options{}, errors.New("nothing to analyse: pass -file or -payslip/-contract")
	}
	return opts, nil
}

func run(ctx context.Context, a checks.Analyser, opts options, out io.Writer) error {
	var (
		env compliance.Envelope
		err error
	)
	if opts.file != "" {
		env, err = a.AnalyseSingleDocument(ctx, opts.file, checks.ContractPrompt(opts.contractType))
	} else {
		var hours *int
		if opts.hours >= 0 {
			hours = &opts.hours
		}
		env, err = a.AnalysePairedDocuments(ctx, opts.payslip, opts.contract, checks.PayslipPrompt(), hours)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
