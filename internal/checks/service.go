package checks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"checkcontrat-backend/internal/analysis"
	"checkcontrat-backend/internal/compliance"
	"checkcontrat-backend/internal/extract"
	"checkcontrat-backend/internal/llm"
	"checkcontrat-backend/internal/report"
	"checkcontrat-backend/internal/shared/metrics"
	"checkcontrat-backend/internal/shared/telemetry"
)

// Analyser runs the compliance pipeline.
type Analyser interface {
	AnalyseSingleDocument(ctx context.Context, file, prompt string) (compliance.Envelope, error)
	AnalysePairedDocuments(ctx context.Context, payslipFile, contractFile, prompt string, hours *int) (compliance.Envelope, error)
}

// Service coordinates ownership checks, the pipeline and persistence.
type Service struct {
	Repo       Repo
	Analyser   Analyser
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Now        func() time.Time
}

// CheckContract analyses a single contract upload owned by userID.
func (s *Service) CheckContract(ctx context.Context, userID, file, contractType string) (Check, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return Check{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if !ownsFile(userID, file) {
		return Check{}, ErrForbidden
	}
	prompt := ContractPrompt(contractType)
	return s.run(ctx, userID, ModuleContrat, []string{file}, func(ctx context.Context) (compliance.Envelope, error) {
		return s.Analyser.AnalyseSingleDocument(ctx, file, prompt)
	})
}

// CheckPayslip analyses a payslip against its contract, both owned by userID.
func (s *Service) CheckPayslip(ctx context.Context, userID, payslipFile, contractFile string, hours *int) (Check, error) {
	payslipFile = strings.TrimSpace(payslipFile)
	contractFile = strings.TrimSpace(contractFile)
	if payslipFile == "" || contractFile == "" {
		return Check{}, fmt.Errorf("%w: payslip and contract files are required", ErrInvalidInput)
	}
	if hours != nil && *hours < 0 {
		return Check{}, fmt.Errorf("%w: hours must not be negative", ErrInvalidInput)
	}
	if !ownsFile(userID, payslipFile) || !ownsFile(userID, contractFile) {
		return Check{}, ErrForbidden
	}
	prompt := PayslipPrompt()
	return s.run(ctx, userID, ModuleFiche, []string{payslipFile, contractFile}, func(ctx context.Context) (compliance.Envelope, error) {
		return s.Analyser.AnalysePairedDocuments(ctx, payslipFile, contractFile, prompt, hours)
	})
}

func (s *Service) run(ctx context.Context, userID, module string, inputs []string, call pipelineCall) (Check, error) {
	start := time.Now()
	metrics.IncCheckStarted(module)

	env, err := s.runWithRetry(ctx, module, call)
	metrics.ObserveCheckDurationSeconds(time.Since(start).Seconds())
	if err != nil {
		reason := FailureReason(err)
		metrics.IncCheckFailed(module, reason)
		telemetry.Error("checks.failed", map[string]any{
			"user_id": userID,
			"module":  module,
			"reason":  reason,
			"err":     err.Error(),
		})
		return Check{}, err
	}

	check := Check{
		ID:         uuid.NewString(),
		UserID:     userID,
		Module:     module,
		InputFiles: inputs,
		OutputFile: env.ReportFile,
		Result:     env.Result,
		Detail:     env.Detail,
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, check); err != nil {
		metrics.IncCheckFailed(module, "storage")
		return Check{}, fmt.Errorf("save check: %w", err)
	}
	metrics.IncCheckCompleted(module, resultLabel(env.Result))
	telemetry.Info("checks.completed", map[string]any{
		"user_id":     userID,
		"check_id":    check.ID,
		"module":      module,
		"result":      check.Result,
		"report_file": check.OutputFile,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return check, nil
}

// Get returns a check owned by userID. Foreign checks are reported as not found.
func (s *Service) Get(ctx context.Context, userID, checkID string) (Check, error) {
	check, err := s.Repo.GetByID(ctx, checkID)
	if err != nil {
		return Check{}, err
	}
	if check.UserID != userID {
		return Check{}, ErrNotFound
	}
	return check, nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Check, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Summary counts the user's checks by verdict, ignoring case.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	counts, err := s.Repo.CountByResult(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	for result, n := range counts {
		sum.Total += n
		switch result {
		case strings.ToLower(analysis.LabelConforme):
			sum.Conforme += n
		case strings.ToLower(analysis.LabelNonConforme):
			sum.NonConforme += n
		}
	}
	return sum, nil
}

// OwnsReport reports whether outputFile was produced by one of userID's checks.
func (s *Service) OwnsReport(ctx context.Context, userID, outputFile string) (bool, error) {
	return s.Repo.HasReport(ctx, userID, outputFile)
}

// FailureReason is the metrics label for a pipeline error.
func FailureReason(err error) string {
	var svcErr *llm.ServiceError
	var renderErr *report.RenderError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, extract.ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, extract.ErrUnsupportedFileType):
		return "unsupported_file_type"
	case errors.As(err, &renderErr):
		return "render"
	case errors.As(err, &svcErr):
		return "llm"
	default:
		return "internal"
	}
}

func resultLabel(result string) string {
	switch {
	case strings.EqualFold(result, analysis.LabelConforme):
		return "conforme"
	case strings.EqualFold(result, analysis.LabelNonConforme):
		return "non_conforme"
	default:
		return "other"
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func ownsFile(userID, file string) bool {
	if userID == "" || filepath.Base(file) != file {
		return false
	}
	return strings.HasPrefix(file, userID+"_")
}
