package report

import (
	"bytes"
	"embed"

	"github.com/KaramelBytes/autoinsight/internal/utils"
)

const htmlTemplateName = "template.html"

//go:embed template.html
var templateFS embed.FS

func (r *Renderer) writeHTML(doc document) (string, error) {
	path := r.Path(FormatHTML)
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, htmlTemplateName, doc); err != nil {
		return "", &RenderError{Format: FormatHTML, Path: path, Err: err}
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", &RenderError{Format: FormatHTML, Path: path, Err: err}
	}
	return path, nil
}
