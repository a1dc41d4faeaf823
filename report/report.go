package report

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"go.uber.org/zap"

	"github.com/leadsight/leadsight/config"
	"github.com/leadsight/leadsight/log"
	"github.com/leadsight/leadsight/models"
)

// Renderer writes one site's artifacts: the serialized audit record, an HTML
// report and a Markdown rendition of the same report.
type Renderer struct {
	outputDir string
	runStamp  string
}

// New creates a Renderer rooted at the configured output directory.
func New(cfg config.ReportConfig, runStamp string) *Renderer {
	return &Renderer{outputDir: cfg.OutputDir, runStamp: runStamp}
}

// Write renders all artifacts for one audit result into its output
// directory. Failed sites get an error record under failed/.
func (r *Renderer) Write(result models.AuditResult) error {
	dir := result.OutputDir
	if dir == "" {
		dir = filepath.Join(r.outputDir, "failed", result.SiteName+"_"+r.runStamp)
		result.OutputDir = dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.NewAuditError(models.ErrCodeReportWrite, "failed to create report directory", err)
	}

	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return models.NewAuditError(models.ErrCodeReportWrite, "failed to serialize audit record", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "audit.json"), raw, 0o644); err != nil {
		return models.NewAuditError(models.ErrCodeReportWrite, "failed to write audit record", err)
	}

	html, err := renderHTML(result)
	if err != nil {
		return models.NewAuditError(models.ErrCodeReportWrite, "failed to render report", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.html"), []byte(html), 0o644); err != nil {
		return models.NewAuditError(models.ErrCodeReportWrite, "failed to write HTML report", err)
	}

	// The Markdown rendition is a convenience for pasting into client docs;
	// a conversion fault only costs us that one artifact.
	if md, mdErr := htmltomarkdown.ConvertString(html); mdErr != nil {
		log.Logger.Warn("markdown conversion failed", zap.String("site", result.SiteName), zap.Error(mdErr))
	} else if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(md), 0o644); err != nil {
		return models.NewAuditError(models.ErrCodeReportWrite, "failed to write Markdown report", err)
	}

	log.Logger.Info("report written", zap.String("site", result.SiteName), zap.String("dir", dir))
	return nil
}

func renderHTML(result models.AuditResult) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, result); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Audit Report: {{.SiteName}}</title>
</head>
<body>
<h1>Website Audit: {{.SiteName}}</h1>
<p><a href="{{.URL}}">{{.URL}}</a> &mdash; audited {{.Timestamp.Format "2 Jan 2006 15:04"}}</p>

{{if not .Success}}
<h2>Audit Failed</h2>
<p>{{.Error}}</p>
{{else}}
<h2>Summary</h2>
<ul>
<li>Classification: {{.Classification}}</li>
<li>Hosted commerce platform: {{if .Platform.IsRecognizedCommercePlatform}}yes{{else}}no{{end}}</li>
<li>Popup detected: {{if .Popups.HasPopup}}yes ({{.Popups.PopupType}}){{else}}no{{end}}</li>
{{if .Popups.EmailPlatform}}<li>Email marketing platform: {{.Popups.EmailPlatform}}</li>{{end}}
</ul>

{{if .Popups.PopupDetails}}
<h2>Popups</h2>
<ul>
{{range .Popups.PopupDetails}}
<li>{{.MatchedSelector}} ({{.Width}}&times;{{.Height}}{{if .HasEmailInput}}, email input{{end}}): {{.TextPreview}}</li>
{{end}}
</ul>
{{end}}

<h2>Pages Captured</h2>
<ul>
{{range .Pages}}
<li><strong>{{.Name}}</strong>{{if .Title}} &mdash; {{.Title}}{{end}}<br>
<em>{{.URL}}</em>
{{if .ContentPreview}}<br>{{.ContentPreview}}{{end}}</li>
{{end}}
</ul>

<h2>Performance</h2>
<ul>
<li>Load time: {{printf "%.0f" .Metrics.LoadTimeMs}} ms</li>
<li>DOM content loaded: {{printf "%.0f" .Metrics.DOMContentLoadedMs}} ms</li>
<li>First paint: {{printf "%.0f" .Metrics.FirstPaintMs}} ms</li>
<li>Images: {{.Metrics.ImageCount}}, links: {{.Metrics.LinkCount}}, scripts: {{.Metrics.ScriptCount}}</li>
</ul>

<h2>Issues</h2>
{{if .Issues}}
<ul>
{{range .Issues}}
<li><strong>{{.Category}}</strong>: {{.Description}}</li>
{{end}}
</ul>
{{else}}
<p>No issues found.</p>
{{end}}
{{end}}
</body>
</html>
`))
