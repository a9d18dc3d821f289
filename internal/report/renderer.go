package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"checkcontrat-backend/internal/analysis"
	"checkcontrat-backend/internal/shared/storage/object"
	"checkcontrat-backend/internal/shared/util"
)

const (
	Title           = "Rapport d’analyse - CheckTonContrat"
	DetailsHeading  = "Détails de l’analyse :"
	DefaultDetail   = "Aucun détail fourni."
	FilenamePrefix  = "report_"
	FilenameSuffix  = ".pdf"
	ContentType     = "application/pdf"
	tokenBytes      = 8
	timestampLayout = "02/01/2006 à 15:04"
)

// RenderError is returned when the report cannot be produced or stored.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return "render report: " + e.Err.Error() }
func (e *RenderError) Unwrap() error { return e.Err }

// Renderer turns analysis results into PDF files in the output storage area.
type Renderer struct {
	Store    object.KeySaver
	Now      func() time.Time
	Location *time.Location
	// NewToken overrides the filename token source.
	NewToken func() (string, error)
}

// New returns a Renderer writing to store and stamping times in loc.
func New(store object.KeySaver, loc *time.Location) *Renderer {
	return &Renderer{Store: store, Location: loc}
}

// Render writes the report for res and returns its filename.
func (r *Renderer) Render(ctx context.Context, res analysis.Result) (string, error) {
	name, err := r.filename()
	if err != nil {
		return "", &RenderError{Err: err}
	}

	data, err := RenderPDF(res, r.now())
	if err != nil {
		return "", &RenderError{Err: err}
	}

	if _, err := r.Store.SaveWithKey(ctx, name, ContentType, bytes.NewReader(data)); err != nil {
		return "", &RenderError{Err: fmt.Errorf("store %s: %w", name, err)}
	}
	return name, nil
}

func (r *Renderer) now() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (r *Renderer) filename() (string, error) {
	if r.NewToken != nil {
		tok, err := r.NewToken()
		if err != nil {
			return "", err
		}
		return FilenamePrefix + tok + FilenameSuffix, nil
	}
	return NewFilename()
}

// NewFilename returns report_<token>.pdf with a fresh 8-byte URL-safe token.
func NewFilename() (string, error) {
	tok, err := util.URLSafeToken(tokenBytes)
	if err != nil {
		return "", err
	}
	return FilenamePrefix + tok + FilenameSuffix, nil
}

// IsPass reports whether label reads as compliant.
func IsPass(label string) bool {
	lowered := strings.ToLower(label)
	return strings.Contains(lowered, "conforme") && !strings.Contains(lowered, "non")
}

// Timestamp formats the generation line shown at the end of the report.
func Timestamp(t time.Time) string {
	return "Généré le " + t.Format(timestampLayout)
}

// RenderPDF lays out the report: title, verdict banner, detail, timestamp.
func RenderPDF(res analysis.Result, generatedAt time.Time) ([]byte, error) {
	label := res.LabelOr(analysis.LabelNonConforme)
	detail := res.DetailOr(DefaultDetail)

	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(Title, true)
	doc.SetCreator("CheckTonContrat", true)
	doc.SetCreationDate(generatedAt)
	doc.SetMargins(marginMM, marginMM, marginMM)
	doc.SetAutoPageBreak(true, marginMM)
	doc.AddPage()

	doc.SetFont(fontFamily, "B", titleSize)
	setText(doc, titleColor)
	doc.CellFormat(0, 12, tr(Title), "", 1, "L", false, 0, "")
	doc.Ln(4)

	banner := failColor
	if IsPass(label) {
		banner = passColor
	}
	doc.SetFillColor(banner.R, banner.G, banner.B)
	setText(doc, white)
	doc.SetFont(fontFamily, "B", bannerSize)
	doc.CellFormat(0, 12, tr("Résultat : "+label), "", 1, "C", true, 0, "")
	doc.Ln(6)

	setText(doc, titleColor)
	doc.SetFont(fontFamily, "B", headingSize)
	doc.CellFormat(0, 8, tr(DetailsHeading), "", 1, "L", false, 0, "")

	setText(doc, textColor)
	doc.SetFont(fontFamily, "", bodySize)
	doc.MultiCell(0, lineHeightMM, tr(normalizeNewlines(detail)), "", "L", false)
	doc.Ln(8)

	setText(doc, mutedColor)
	doc.SetFont(fontFamily, "I", footnoteSize)
	doc.CellFormat(0, 5, tr(Timestamp(generatedAt)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func setText(doc *fpdf.Fpdf, c rgb) {
	doc.SetTextColor(c.R, c.G, c.B)
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}
