package checks

import (
	"context"
	"sync"

	"checkcontrat-backend/internal/compliance"
)

type analyserCall struct {
	File, Payslip, Contract, Prompt string
	Hours                           *int
}

// fakeAnalyser replays errs in order, then returns env.
type fakeAnalyser struct {
	mu    sync.Mutex
	env   compliance.Envelope
	errs  []error
	calls []analyserCall
}

func (f *fakeAnalyser) next() error {
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeAnalyser) AnalyseSingleDocument(ctx context.Context, file, prompt string) (compliance.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, analyserCall{File: file, Prompt: prompt})
	if err := f.next(); err != nil {
		return compliance.Envelope{}, err
	}
	return f.env, nil
}

func (f *fakeAnalyser) AnalysePairedDocuments(ctx context.Context, payslipFile, contractFile, prompt string, hours *int) (compliance.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, analyserCall{Payslip: payslipFile, Contract: contractFile, Prompt: prompt, Hours: hours})
	if err := f.next(); err != nil {
		return compliance.Envelope{}, err
	}
	return f.env, nil
}

func conformeEnvelope() compliance.Envelope {
	return compliance.Envelope{Result: "Conforme", Detail: "RAS", ReportFile: "report_abc.pdf"}
}
