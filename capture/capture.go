package capture

import (
	"context"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/leadsight/leadsight/log"
	"github.com/leadsight/leadsight/models"
)

// Page is the slice of the browser session the capture unit needs.
type Page interface {
	Eval(js string, out any, args ...any) error
	Screenshot(path string) error
	HTML() (string, error)
}

// pageMeta is the metadata probe result. loadedAt is performance.now(), a
// client-side high-resolution timestamp.
type pageMeta struct {
	Title           string  `json:"title"`
	URL             string  `json:"url"`
	MetaDescription string  `json:"metaDescription"`
	FirstHeading    string  `json:"firstHeading"`
	LoadedAt        float64 `json:"loadedAt"`
}

const metaScript = `() => {
	const out = { title: '', url: '', metaDescription: '', firstHeading: '', loadedAt: 0 };
	try {
		out.title = document.title || '';
		out.url = window.location.href;
		const desc = document.querySelector('meta[name="description"]');
		if (desc) out.metaDescription = desc.getAttribute('content') || '';
		const h = document.querySelector('h1, h2');
		if (h) out.firstHeading = (h.innerText || '').trim().slice(0, 200);
		out.loadedAt = performance.now();
	} catch (e) {}
	return out;
}`

const previewLimit = 280

// Capture waits for the page to settle visually, takes a full-page screenshot
// to <outputDir>/<name>.png and extracts basic page metadata. The settle wait
// is a fixed delay rather than an event wait because visual completeness
// cannot be reliably signaled by the page itself. Screenshot failure
// propagates; metadata extraction degrades to empty fields.
func Capture(ctx context.Context, p Page, name, outputDir string, settleDelay time.Duration) (models.PageCapture, error) {
	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
	}

	pc := models.PageCapture{Name: name}

	path := filepath.Join(outputDir, name+".png")
	if err := p.Screenshot(path); err != nil {
		return pc, err
	}
	pc.ScreenshotPath = path

	var meta pageMeta
	if err := p.Eval(metaScript, &meta); err != nil {
		log.Logger.Warn("page metadata probe failed", zap.String("page", name), zap.Error(err))
	} else {
		pc.Title = meta.Title
		pc.URL = meta.URL
		pc.MetaDescription = meta.MetaDescription
		pc.FirstHeading = meta.FirstHeading
		pc.ClientLoadMs = meta.LoadedAt
	}

	pc.ContentPreview = contentPreview(p, pc.URL)
	return pc, nil
}

// contentPreview runs the rendered HTML through readability extraction and
// returns a short text excerpt for the report. Best-effort only.
func contentPreview(p Page, pageURL string) string {
	html, err := p.HTML()
	if err != nil {
		return ""
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		u = nil
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return ""
	}

	text := article.Excerpt
	if text == "" {
		text = article.TextContent
	}
	text = strings.Join(strings.Fields(text), " ")
	if len([]rune(text)) > previewLimit {
		text = string([]rune(text)[:previewLimit]) + "…"
	}
	return text
}

// ProductPageName labels the n-th captured product page (1-based).
func ProductPageName(n int) string {
	return "product_" + strconv.Itoa(n) + "_desktop"
}
