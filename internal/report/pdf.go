package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"github.com/KaramelBytes/autoinsight/internal/utils"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// Page geometry in points (Letter, 1in = 72pt).
const (
	marginSide   = 54.0
	marginTop    = 72.0
	marginBottom = 54.0
	imageMaxW    = 6.5 * 72
	imageMaxH    = 4.5 * 72
	bodyLineH    = 14.0
)

type rgb struct{ r, g, b int }

var (
	colorTitle    = rgb{0x1f, 0x47, 0x88}
	colorHeading  = rgb{0x2c, 0x5a, 0xa0}
	colorText     = rgb{0, 0, 0}
	colorMuted    = rgb{128, 128, 128}
	colorRowShade = rgb{211, 211, 211}
	colorHeader   = rgb{245, 245, 245}
)

// pdfWriter wraps fpdf with the report's text styles.
type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	// lost counts runes the core fonts cannot encode.
	lost int
}

// text converts s to the cp1252 encoding of the core fonts. Runes outside
// it are printed as '.' and counted in lost.
func (w *pdfWriter) text(s string) string {
	for _, c := range s {
		if c >= utf8.RuneSelf && w.tr(string(c)) == "." {
			w.lost++
		}
	}
	return w.tr(s)
}

func (w *pdfWriter) textColor(c rgb) { w.pdf.SetTextColor(c.r, c.g, c.b) }

func (w *pdfWriter) heading(text string) {
	w.pdf.Ln(12)
	w.pdf.SetFont("Helvetica", "B", 16)
	w.textColor(colorHeading)
	w.pdf.CellFormat(0, 20, w.text(text), "", 1, "L", false, 0, "")
	w.pdf.Ln(8)
	w.textColor(colorText)
}

func (w *pdfWriter) subheading(text string) {
	w.pdf.SetFont("Helvetica", "B", 12)
	w.textColor(colorText)
	w.pdf.CellFormat(0, 16, w.text(text), "", 1, "L", false, 0, "")
}

func (w *pdfWriter) paragraph(lines []string, align string) {
	w.pdf.SetFont("Helvetica", "", 11)
	w.textColor(colorText)
	w.pdf.MultiCell(0, bodyLineH, w.text(strings.Join(lines, "\n")), "", align, false)
	w.pdf.Ln(6)
}

func (w *pdfWriter) table(widths []float64, header []string, rows [][]string) {
	w.pdf.SetDrawColor(colorMuted.r, colorMuted.g, colorMuted.b)
	w.pdf.SetLineWidth(1)
	if header != nil {
		w.pdf.SetFont("Helvetica", "B", 12)
		w.pdf.SetFillColor(colorHeading.r, colorHeading.g, colorHeading.b)
		w.textColor(colorHeader)
		for i, h := range header {
			w.pdf.CellFormat(widths[i], 22, w.text(h), "1", 0, "L", true, 0, "")
		}
		w.pdf.Ln(-1)
	}
	w.pdf.SetFont("Helvetica", "", 11)
	w.textColor(colorText)
	for n, row := range rows {
		if n%2 == 1 {
			w.pdf.SetFillColor(colorRowShade.r, colorRowShade.g, colorRowShade.b)
		} else {
			w.pdf.SetFillColor(255, 255, 255)
		}
		for i, cell := range row {
			w.pdf.CellFormat(widths[i], 20, w.text(cell), "1", 0, "L", true, 0, "")
		}
		w.pdf.Ln(-1)
	}
}

// raster is a visualization whose image has been decoded and registered.
type raster struct {
	visualBlock
	name string
	w, h float64
}

func (r *Renderer) writePDF(doc document) (string, error) {
	path := r.Path(FormatPDF)
	fail := func(err error) (string, error) {
		return "", &RenderError{Format: FormatPDF, Path: path, Err: err}
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCreationDate(doc.generatedAt)
	pdf.SetModificationDate(doc.generatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("AutoInsight Report - "+doc.AnalysisID, true)
	pdf.SetAuthor("AutoInsight", true)
	pdf.SetCreator("AutoInsight", true)

	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-36)
		pdf.SetFont("Helvetica", "I", 8)
		w.textColor(colorMuted)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	images := r.registerImages(pdf, doc.Images)

	// Title page.
	pdf.AddPage()
	pdf.Ln(144)
	pdf.SetFont("Helvetica", "B", 24)
	w.textColor(colorTitle)
	pdf.CellFormat(0, 30, "AutoInsight", "", 1, "C", false, 0, "")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "B", 14)
	w.textColor(colorText)
	pdf.CellFormat(0, 20, "Automated Data Analysis Report", "", 1, "C", false, 0, "")
	pdf.Ln(36)
	pdf.SetX(marginSide + 36)
	w.metadata([][2]string{
		{"Report ID:", doc.AnalysisID},
		{"Generated:", doc.Generated},
		{"Dataset Size:", doc.DatasetShape},
		{"Data Quality:", doc.Completeness + " complete"},
	})

	// Insights, with the quality metrics after the executive summary.
	pdf.AddPage()
	rest := doc.Sections
	if len(rest) > 0 && rest[0].Section == analysis.SectionExecutiveSummary {
		w.section(rest[0])
		rest = rest[1:]
	}
	w.heading("Data Quality Metrics")
	rows := make([][]string, len(doc.Quality))
	for i, m := range doc.Quality {
		rows[i] = []string{m.Metric, m.Value}
	}
	w.table([]float64{216, 216}, []string{"Metric", "Value"}, rows)
	pdf.Ln(21.6)
	for _, s := range rest {
		w.section(s)
	}

	if len(doc.Columns) > 0 {
		pdf.AddPage()
		w.heading("Column Statistics Summary")
		for _, c := range doc.Columns {
			w.subheading(c.Heading)
			lines := []string{c.Summary}
			if c.Detail != "" {
				lines = append(lines, c.Detail)
			}
			w.paragraph(lines, "L")
		}
	}

	if len(images) > 0 {
		pdf.AddPage()
		w.heading("Visual Analysis")
		pageW, _ := pdf.GetPageSize()
		contentW := pageW - 2*marginSide
		for _, img := range images {
			w.subheading(img.Name)
			if img.Description != "" {
				w.paragraph([]string{img.Description}, "L")
			}
			x := marginSide + (contentW-img.w)/2
			pdf.ImageOptions(img.name, x, 0, img.w, img.h, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			pdf.Ln(14.4)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fail(err)
	}
	if w.lost > 0 {
		r.log.Warn("replaced characters outside the PDF font encoding",
			zap.String("analysis_id", doc.AnalysisID),
			zap.Int("count", w.lost),
		)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fail(err)
	}
	return path, nil
}

func (w *pdfWriter) section(s sectionBlock) {
	w.heading(s.Title)
	for _, p := range s.Paragraphs {
		w.paragraph(p, "J")
	}
	if s.Confidence != "" {
		w.pdf.SetFont("Helvetica", "I", 9)
		w.textColor(colorMuted)
		w.pdf.CellFormat(0, 12, w.text("Confidence: "+s.Confidence), "", 1, "L", false, 0, "")
		w.textColor(colorText)
	}
	w.pdf.Ln(14.4)
}

func (w *pdfWriter) metadata(rows [][2]string) {
	left := w.pdf.GetX()
	for _, row := range rows {
		w.pdf.SetX(left)
		w.pdf.SetFont("Helvetica", "B", 11)
		w.pdf.CellFormat(144, 18, w.text(row[0]), "", 0, "L", false, 0, "")
		w.pdf.SetFont("Helvetica", "", 11)
		w.pdf.CellFormat(288, 18, w.text(row[1]), "", 1, "L", false, 0, "")
	}
}

// registerImages decodes every image visualization and registers it with
// the document. Images that cannot be read or decoded are logged and
// skipped so a single bad chart never fails the report.
func (r *Renderer) registerImages(pdf *fpdf.Fpdf, blocks []visualBlock) []raster {
	var out []raster
	for i, v := range blocks {
		buf, bounds, err := loadRaster(v.Source)
		if err == nil {
			name := fmt.Sprintf("viz-%d", i)
			pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, buf)
			if !pdf.Ok() {
				err = pdf.Error()
				pdf.ClearError()
			} else {
				w, h := fitBox(float64(bounds.Dx()), float64(bounds.Dy()), imageMaxW, imageMaxH)
				out = append(out, raster{visualBlock: v, name: name, w: w, h: h})
				continue
			}
		}
		r.log.Warn("skipping visualization",
			zap.String("name", v.Name),
			zap.String("path", v.Source),
			zap.Error(err))
	}
	return out
}

// loadRaster decodes an image and re-encodes it as 8-bit NRGBA PNG, the
// one variant the PDF writer embeds reliably.
func loadRaster(path string) (*bytes.Buffer, image.Rectangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("decode image: %w", err)
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, bounds, errors.New("empty image")
	}
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, bounds, fmt.Errorf("encode image: %w", err)
	}
	return &buf, bounds, nil
}

// fitBox scales w×h proportionally to fit inside maxW×maxH.
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
