package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/leadsight/leadsight/capture"
	"github.com/leadsight/leadsight/checks"
	"github.com/leadsight/leadsight/config"
	"github.com/leadsight/leadsight/detect"
	"github.com/leadsight/leadsight/log"
	"github.com/leadsight/leadsight/models"
)

// Session is the browser resource handle the orchestrator drives. Exactly one
// session is shared across a whole batch; the orchestrator returns it to the
// desktop viewport before and after every site so audits cannot contaminate
// each other.
type Session interface {
	Navigate(ctx context.Context, url string) error
	SetViewport(vp config.ViewportConfig) error
	Eval(js string, out any, args ...any) error
	HTML() (string, error)
	Screenshot(path string) error
}

// Auditor runs the full inspection sequence for one site at a time.
type Auditor struct {
	session  Session
	cfg      *config.Config
	runStamp string
}

// New creates an Auditor around an open session. The run stamp keys every
// site's artifact directory for this batch; RunStamp produces one.
func New(session Session, cfg *config.Config, runStamp string) *Auditor {
	return &Auditor{
		session:  session,
		cfg:      cfg,
		runStamp: runStamp,
	}
}

// RunStamp formats the moment a batch starts for use in directory names.
func RunStamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// Audit runs the whole sequence for one site: navigate, detect platform and
// popups, classify, capture desktop homepage, product pages and mobile
// homepage, then collect metrics and run the check battery. It always returns
// exactly one AuditResult; every fault short of a batch-level launch failure
// is converted into a failed record rather than propagated.
func (a *Auditor) Audit(ctx context.Context, rawURL string) (result models.AuditResult) {
	result = models.AuditResult{
		URL:       rawURL,
		SiteName:  models.SiteName(rawURL),
		Timestamp: time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			log.Logger.Error("audit panicked", zap.String("url", rawURL), zap.Any("panic", r))
			result = failedResult(result, fmt.Errorf("internal fault: %v", r))
		}
	}()

	log.Logger.Info("auditing site", zap.String("url", rawURL), zap.String("site", result.SiteName))

	// Every audit begins and ends in the desktop viewport regardless of how
	// the previous site left the session.
	if err := a.session.SetViewport(a.cfg.Browser.DefaultViewport); err != nil {
		return failedResult(result, models.NewAuditError(models.ErrCodeInternal, "viewport reset failed", err))
	}
	defer func() {
		if err := a.session.SetViewport(a.cfg.Browser.DefaultViewport); err != nil {
			log.Logger.Warn("viewport restore failed", zap.String("url", rawURL), zap.Error(err))
		}
	}()

	if err := a.session.Navigate(ctx, rawURL); err != nil {
		return failedResult(result, err)
	}

	// Platform detection must finish before the popup settle delay starts,
	// so load-time popups aren't conflated with platform scripts.
	result.Platform.IsRecognizedCommercePlatform = detect.Platform(a.session)
	commerceLike := result.Platform.IsRecognizedCommercePlatform || detect.Commerce(a.session)

	result.Popups = detect.Popups(ctx, a.session, a.cfg.Audit.PopupDetectionDelay)
	result.Classification = models.Classify(result.Popups.HasPopup)

	// The output location encodes the classification, so it can only be
	// created now. It is fixed from here on even if later probes disagree.
	outputDir := filepath.Join(
		a.cfg.Report.OutputDir,
		string(result.Classification),
		result.SiteName+"_"+a.runStamp,
	)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return failedResult(result, models.NewAuditError(models.ErrCodeCaptureIO, "failed to create output directory", err))
	}
	result.OutputDir = outputDir

	home, err := capture.Capture(ctx, a.session, "homepage_desktop", outputDir, a.cfg.Audit.PageLoadDelay)
	if err != nil {
		return failedResult(result, err)
	}
	if home.URL == "" {
		home.URL = rawURL
	}
	result.Pages = append(result.Pages, home)

	// Homepage HTML feeds the check battery later; grab it before product
	// navigation replaces the page.
	homepageHTML, htmlErr := a.session.HTML()
	if htmlErr != nil {
		log.Logger.Warn("homepage HTML read failed", zap.String("url", rawURL), zap.Error(htmlErr))
	}

	if commerceLike {
		products, err := a.captureProducts(ctx, rawURL, outputDir)
		result.Pages = append(result.Pages, products...)
		if err != nil {
			return failedResult(result, err)
		}
	}

	if err := a.session.SetViewport(a.cfg.Browser.MobileViewport); err != nil {
		return failedResult(result, models.NewAuditError(models.ErrCodeInternal, "mobile viewport switch failed", err))
	}
	if err := a.session.Navigate(ctx, rawURL); err != nil {
		return failedResult(result, err)
	}
	mobile, err := capture.Capture(ctx, a.session, "homepage_mobile", outputDir, a.cfg.Audit.PageLoadDelay)
	if err != nil {
		return failedResult(result, err)
	}
	result.Pages = append(result.Pages, mobile)

	result.Metrics = checks.ReadPerformance(a.session)
	if htmlErr != nil {
		// Running the DOM checks over nothing would fabricate findings for a
		// page that was never inspected.
		result.Issues = []models.Issue{{
			Category:    models.IssueError,
			Description: "Homepage HTML unavailable, content checks skipped",
		}}
	} else {
		result.Issues = checks.Run(home.URL, homepageHTML, result.Metrics, a.cfg.Performance.SlowLoadTime)
	}

	result.Success = true
	log.Logger.Info("audit complete",
		zap.String("url", rawURL),
		zap.String("classification", string(result.Classification)),
		zap.Int("pages", len(result.Pages)),
		zap.Int("issues", len(result.Issues)),
	)
	return result
}

// captureProducts discovers product links on the current (homepage) DOM and
// captures up to the configured maximum. A product link that fails to
// navigate is skipped; a capture I/O failure is fatal for the site.
func (a *Auditor) captureProducts(ctx context.Context, siteURL, outputDir string) ([]models.PageCapture, error) {
	var hrefs []string
	if err := a.session.Eval(anchorScript, &hrefs); err != nil {
		log.Logger.Warn("anchor probe failed", zap.String("url", siteURL), zap.Error(err))
		return nil, nil
	}

	links := filterProductLinks(hrefs, a.cfg.Audit.MaxProductPages)
	var pages []models.PageCapture

	for i, link := range links {
		if err := a.session.Navigate(ctx, link); err != nil {
			log.Logger.Warn("skipping product page", zap.String("url", link), zap.Error(err))
			continue
		}

		page, err := capture.Capture(ctx, a.session, capture.ProductPageName(i+1), outputDir, a.cfg.Audit.PageLoadDelay)
		if err != nil {
			return pages, err
		}
		if page.URL == "" {
			page.URL = link
		}
		pages = append(pages, page)
	}

	return pages, nil
}

// failedResult keeps only the identity fields and the error description, per
// the failed-record shape.
func failedResult(result models.AuditResult, err error) models.AuditResult {
	log.Logger.Warn("audit failed", zap.String("url", result.URL), zap.Error(err))
	return models.AuditResult{
		URL:       result.URL,
		SiteName:  result.SiteName,
		Timestamp: result.Timestamp,
		Success:   false,
		Error:     err.Error(),
	}
}
