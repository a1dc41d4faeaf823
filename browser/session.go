package browser

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"github.com/leadsight/leadsight/config"
	"github.com/leadsight/leadsight/log"
	"github.com/leadsight/leadsight/models"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// networkIdleWindow is how long the network must stay quiet after navigation
// before a page counts as settled.
const networkIdleWindow = 500 * time.Millisecond

// Session owns one browser process and one reusable page. It is mutated
// sequentially by the audit pipeline (current URL, viewport) and is NOT safe
// for concurrent use.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	browserCfg config.BrowserConfig
	shotCfg    config.ScreenshotConfig
	navTimeout time.Duration

	closed bool
}

// Open launches the browser, creates the single page and applies the default
// viewport, user agent and automation masking. The returned session must be
// closed by the caller.
func Open(browserCfg config.BrowserConfig, shotCfg config.ScreenshotConfig, navTimeout time.Duration) (*Session, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.Bin != "" {
		l = l.Bin(browserCfg.Bin)
	}

	// Mask the most common automation tells before any page loads.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-popup-blocking"))

	for _, arg := range browserCfg.LaunchArgs {
		name, value, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if name == "" {
			continue
		}
		if value == "" {
			l.Set(flags.Flag(name))
		} else {
			l.Set(flags.Flag(name), value)
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeLaunch, "failed to launch browser", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewAuditError(models.ErrCodeLaunch, "failed to connect to browser", err)
	}
	log.Logger.Info("browser launched", zap.String("controlURL", controlURL))

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		return nil, models.NewAuditError(models.ErrCodeLaunch, "failed to create page", err)
	}

	// Stealth JS only takes effect for navigations after it is installed.
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		log.Logger.Warn("stealth injection failed, proceeding without stealth", zap.Error(evalErr))
	}

	if uaErr := (proto.NetworkSetUserAgentOverride{
		UserAgent:      defaultUserAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}).Call(page); uaErr != nil {
		log.Logger.Warn("user-agent override failed", zap.Error(uaErr))
	}

	if hdrErr := (proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{"Accept-Language": gson.New("en-US,en;q=0.9")},
	}).Call(page); hdrErr != nil {
		log.Logger.Warn("extra headers failed", zap.Error(hdrErr))
	}

	s := &Session{
		launcher:   l,
		browser:    b,
		page:       page,
		browserCfg: browserCfg,
		shotCfg:    shotCfg,
		navTimeout: navTimeout,
	}

	if vpErr := s.SetViewport(browserCfg.DefaultViewport); vpErr != nil {
		s.Close()
		return nil, models.NewAuditError(models.ErrCodeLaunch, "failed to apply default viewport", vpErr)
	}

	return s, nil
}

// Navigate loads a URL and waits for the network to go quiet, bounded by the
// configured navigation timeout. A timeout or unreachable host surfaces as a
// NAVIGATION_FAILED error; callers abort the current site and move on.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	p := s.page.Context(navCtx)

	// The idle waiter must be registered before Navigate, otherwise
	// in-flight requests are missed and the wait returns instantly.
	waitIdle := p.WaitRequestIdle(networkIdleWindow, nil, nil, nil)

	if err := p.Navigate(url); err != nil {
		return navigationError(err, "navigation failed for "+url)
	}
	waitIdle()

	if err := navCtx.Err(); err != nil {
		return navigationError(err, "navigation timed out for "+url)
	}
	return nil
}

// SetViewport switches device emulation. Effective for all subsequent
// navigations and screenshots.
func (s *Session) SetViewport(vp config.ViewportConfig) error {
	scale := vp.DeviceScaleFactor
	if scale == 0 {
		scale = 1
	}
	return s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: scale,
		Mobile:            vp.Mobile,
	})
}

// Eval runs a JS function in page context and decodes the serialized result
// into out. Probe callers treat any error as "no evidence" rather than
// propagating it.
func (s *Session) Eval(js string, out any, args ...any) error {
	res, err := s.page.Eval(js, args...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(res.Value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// HTML returns the rendered HTML of the current page.
func (s *Session) HTML() (string, error) {
	return s.page.HTML()
}

// CurrentURL reports the page's location, best-effort.
func (s *Session) CurrentURL() string {
	res, err := s.page.Eval(`() => window.location.href`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// Screenshot persists a screenshot of the current page to path. Persistence
// failure is fatal for the enclosing audit, so it propagates as a
// CAPTURE_IO_FAILED error.
func (s *Session) Screenshot(path string) error {
	req := &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	}
	if s.shotCfg.Format == "jpeg" {
		quality := s.shotCfg.Quality
		req.Format = proto.PageCaptureScreenshotFormatJpeg
		req.Quality = &quality
	}

	data, err := s.page.Screenshot(s.shotCfg.FullPage, req)
	if err != nil {
		return models.NewAuditError(models.ErrCodeCaptureIO, "screenshot capture failed", err)
	}
	if err := writeFile(path, data); err != nil {
		return models.NewAuditError(models.ErrCodeCaptureIO, "screenshot write failed", err)
	}
	return nil
}

// Close tears down the page and browser. Idempotent and safe on a session
// that never finished opening.
func (s *Session) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true

	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Logger.Warn("browser close failed", zap.Error(err))
		}
	}
	if s.launcher != nil {
		s.launcher.Kill()
	}
	log.Logger.Info("browser session closed")
}

// navigationError maps raw navigation faults onto the coded error the
// orchestrator expects. Timeouts get a clearer message than raw CDP errors.
func navigationError(err error, msg string) *models.AuditError {
	if errors.Is(err, context.DeadlineExceeded) {
		msg = msg + " (timeout)"
	}
	return models.NewAuditError(models.ErrCodeNavigation, msg, err)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
