package compliance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"checkcontrat-backend/internal/analysis"
	"checkcontrat-backend/internal/extract"
	"checkcontrat-backend/internal/llm"
	openai "checkcontrat-backend/internal/llm/openai"
	"checkcontrat-backend/internal/report"
	localstore "checkcontrat-backend/internal/shared/storage/object/local"
)

// Envelope is returned by both analysis workflows.
type Envelope struct {
	Result     string `json:"result"`
	Detail     string `json:"detail"`
	ReportFile string `json:"report_file"`
}

// TextExtractor reads a named file from the input area.
type TextExtractor interface {
	ExtractFile(ctx context.Context, filename string) (string, error)
}

// Analyser sends a prompt and text to the model.
type Analyser interface {
	Analyse(ctx context.Context, prompt, text string) (analysis.Result, error)
}

// ReportRenderer persists a report and returns its filename.
type ReportRenderer interface {
	Render(ctx context.Context, res analysis.Result) (string, error)
}

// Config carries everything NewFromConfig needs to build a local pipeline.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	InputDir  string
	OutputDir string
	Location  *time.Location
}

// Orchestrator runs extraction, analysis and rendering in sequence.
type Orchestrator struct {
	Extractor TextExtractor
	Analyser  Analyser
	Renderer  ReportRenderer
}

// New wires an Orchestrator from explicit components.
func New(extractor TextExtractor, analyser Analyser, renderer ReportRenderer) *Orchestrator {
	return &Orchestrator{Extractor: extractor, Analyser: analyser, Renderer: renderer}
}

// NewFromConfig builds filesystem-backed storage areas and an OpenAI client.
func NewFromConfig(cfg Config) (*Orchestrator, error) {
	if strings.TrimSpace(cfg.InputDir) == "" || strings.TrimSpace(cfg.OutputDir) == "" {
		return nil, fmt.Errorf("input and output directories are required")
	}
	var completer llm.Completer = llm.PlaceholderClient{}
	if strings.TrimSpace(cfg.APIKey) != "" {
		client, err := openai.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		completer = client
	}
	return New(
		extract.New(localstore.New(cfg.InputDir)),
		analysis.NewClient(completer),
		report.New(localstore.New(cfg.OutputDir), cfg.Location),
	), nil
}

// AnalyseSingleDocument analyses one file against prompt.
func (o *Orchestrator) AnalyseSingleDocument(ctx context.Context, file, prompt string) (Envelope, error) {
	text, err := o.Extractor.ExtractFile(ctx, file)
	if err != nil {
		return Envelope{}, err
	}
	return o.analyseAndRender(ctx, prompt, text)
}

// AnalysePairedDocuments analyses a payslip against its contract. hours, when
// set, is appended as declared context only.
func (o *Orchestrator) AnalysePairedDocuments(ctx context.Context, payslipFile, contractFile, prompt string, hours *int) (Envelope, error) {
	payslipText, err := o.Extractor.ExtractFile(ctx, payslipFile)
	if err != nil {
		return Envelope{}, err
	}
	contractText, err := o.Extractor.ExtractFile(ctx, contractFile)
	if err != nil {
		return Envelope{}, err
	}
	return o.analyseAndRender(ctx, prompt, CombinedText(contractText, payslipText, hours))
}

// CombinedText labels the contract and payslip sections for the model.
func CombinedText(contractText, payslipText string, hours *int) string {
	var b strings.Builder
	b.WriteString("Contrat de travail:\n")
	b.WriteString(contractText)
	b.WriteString("\n\nFiche de paie:\n")
	b.WriteString(payslipText)
	if hours != nil {
		fmt.Fprintf(&b, "\n\nNombre d'heures travaillées déclarées: %d", *hours)
	}
	return b.String()
}

func (o *Orchestrator) analyseAndRender(ctx context.Context, prompt, text string) (Envelope, error) {
	res, err := o.Analyser.Analyse(ctx, prompt, text)
	if err != nil {
		return Envelope{}, err
	}
	name, err := o.Renderer.Render(ctx, res)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Result:     res.LabelOr(analysis.LabelNonConforme),
		Detail:     res.DetailOr(""),
		ReportFile: name,
	}, nil
}
