// Package report renders generated insights and the analysis bundle into a
// paginated PDF document and a standalone HTML page.
package report

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Format names an output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Formats lists every supported format in render order.
var Formats = []Format{FormatPDF, FormatHTML}

// ParseFormats resolves a --format value: "pdf", "html" or "all".
func ParseFormats(s string) ([]Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return append([]Format(nil), Formats...), nil
	case string(FormatPDF):
		return []Format{FormatPDF}, nil
	case string(FormatHTML):
		return []Format{FormatHTML}, nil
	}
	return nil, fmt.Errorf("unsupported report format %q (want pdf, html or all)", s)
}

// Input is everything a report is rendered from.
type Input struct {
	Bundle         *analysis.Bundle
	Insights       []analysis.Insight
	Visualizations []analysis.Visualization
}

// Rendered records one written artifact.
type Rendered struct {
	Format Format `json:"format"`
	Path   string `json:"path"`
}

// RenderError reports a failure to build or write one output format.
type RenderError struct {
	Format Format
	Path   string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s report %s: %v", e.Format, e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer writes reports for a single analysis into <baseDir>/<analysisID>.
type Renderer struct {
	analysisID string
	dir        string
	now        func() time.Time
	log        *zap.Logger
	tmpl       *template.Template
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the clock used for the report timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger used for skipped visualizations.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRenderer creates the output directory for analysisID under baseDir.
func NewRenderer(baseDir, analysisID string, opts ...Option) (*Renderer, error) {
	id := strings.TrimSpace(analysisID)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("invalid analysis id %q", analysisID)
	}
	tmpl, err := template.ParseFS(templateFS, htmlTemplateName)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	r := &Renderer{
		analysisID: id,
		dir:        filepath.Join(baseDir, id),
		now:        time.Now,
		log:        zap.NewNop(),
		tmpl:       tmpl,
	}
	for _, o := range opts {
		o(r)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return r, nil
}

// Dir is the directory reports are written to.
func (r *Renderer) Dir() string { return r.dir }

// Path returns the output path for a format.
func (r *Renderer) Path(f Format) string {
	return filepath.Join(r.dir, "report_"+r.analysisID+"."+string(f))
}

func (r *Renderer) document(in Input) (document, error) {
	if in.Bundle == nil {
		return document{}, errors.New("missing analysis bundle")
	}
	return buildDocument(r.analysisID, r.now(), in), nil
}

// RenderPDF writes the paginated report and returns its path.
func (r *Renderer) RenderPDF(in Input) (string, error) {
	doc, err := r.document(in)
	if err != nil {
		return "", &RenderError{Format: FormatPDF, Path: r.Path(FormatPDF), Err: err}
	}
	return r.writePDF(doc)
}

// RenderHTML writes the standalone HTML report and returns its path.
func (r *Renderer) RenderHTML(in Input) (string, error) {
	doc, err := r.document(in)
	if err != nil {
		return "", &RenderError{Format: FormatHTML, Path: r.Path(FormatHTML), Err: err}
	}
	return r.writeHTML(doc)
}

// RenderAll renders the requested formats concurrently from one shared
// document. Each format runs to completion regardless of the others; the
// first error is returned alongside every artifact that was written.
func (r *Renderer) RenderAll(ctx context.Context, in Input, formats ...Format) ([]Rendered, error) {
	if len(formats) == 0 {
		formats = Formats
	}
	doc, err := r.document(in)
	if err != nil {
		return nil, &RenderError{Format: formats[0], Path: r.Path(formats[0]), Err: err}
	}

	paths := make([]string, len(formats))
	var g errgroup.Group
	for i, f := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var (
				p   string
				err error
			)
			switch f {
			case FormatPDF:
				p, err = r.writePDF(doc)
			case FormatHTML:
				p, err = r.writeHTML(doc)
			default:
				err = &RenderError{Format: f, Err: fmt.Errorf("unsupported format %q", f)}
			}
			if err != nil {
				return err
			}
			paths[i] = p
			return nil
		})
	}
	err = g.Wait()

	var out []Rendered
	for i, f := range formats {
		if paths[i] != "" {
			out = append(out, Rendered{Format: f, Path: paths[i]})
		}
	}
	return out, err
}
