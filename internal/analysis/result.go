package analysis

// Labels used for the compliance verdict.
const (
	LabelConforme    = "Conforme"
	LabelNonConforme = "Non conforme"
)

// Result is the structured outcome of one analysis. A nil field means the
// model did not provide it.
type Result struct {
	Label  *string `json:"result,omitempty"`
	Detail *string `json:"detail,omitempty"`
}

// NewResult builds a Result with both fields set.
func NewResult(label, detail string) Result {
	return Result{Label: &label, Detail: &detail}
}

// LabelOr returns the label or def when absent.
func (r Result) LabelOr(def string) string {
	if r.Label == nil {
		return def
	}
	return *r.Label
}

// DetailOr returns the detail or def when absent.
func (r Result) DetailOr(def string) string {
	if r.Detail == nil {
		return def
	}
	return *r.Detail
}
