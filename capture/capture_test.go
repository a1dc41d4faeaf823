package capture

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

type fakePage struct {
	screenshotErr error
	evalErr       error
	meta          map[string]any
	html          string

	screenshotPath string
}

func (f *fakePage) Screenshot(path string) error {
	f.screenshotPath = path
	return f.screenshotErr
}

func (f *fakePage) Eval(_ string, out any, _ ...any) error {
	if f.evalErr != nil {
		return f.evalErr
	}
	raw, err := json.Marshal(f.meta)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakePage) HTML() (string, error) {
	return f.html, nil
}

func TestCapture(t *testing.T) {
	page := &fakePage{
		meta: map[string]any{
			"title":           "Acme Store",
			"url":             "https://acme.example/",
			"metaDescription": "Acme sells anvils",
			"firstHeading":    "Welcome",
			"loadedAt":        1234.5,
		},
		html: `<html><body><article><h1>Welcome</h1><p>Acme has sold anvils since 1949 and ships worldwide.</p></article></body></html>`,
	}

	pc, err := Capture(context.Background(), page, "homepage_desktop", "/tmp/out", 0)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if pc.Name != "homepage_desktop" {
		t.Errorf("Name = %q", pc.Name)
	}
	want := filepath.Join("/tmp/out", "homepage_desktop.png")
	if pc.ScreenshotPath != want || page.screenshotPath != want {
		t.Errorf("screenshot path = %q, want %q", pc.ScreenshotPath, want)
	}
	if pc.Title != "Acme Store" || pc.URL != "https://acme.example/" {
		t.Errorf("metadata not filled: %+v", pc)
	}
	if pc.ClientLoadMs != 1234.5 {
		t.Errorf("ClientLoadMs = %v, want 1234.5", pc.ClientLoadMs)
	}
}

func TestCaptureScreenshotFailureIsFatal(t *testing.T) {
	page := &fakePage{screenshotErr: errors.New("disk full")}

	pc, err := Capture(context.Background(), page, "homepage_desktop", "/tmp/out", 0)
	if err == nil {
		t.Fatal("expected screenshot error to propagate")
	}
	if pc.ScreenshotPath != "" {
		t.Errorf("failed capture must not record a screenshot path, got %q", pc.ScreenshotPath)
	}
}

func TestCaptureMetadataDegrades(t *testing.T) {
	page := &fakePage{evalErr: errors.New("context destroyed")}

	pc, err := Capture(context.Background(), page, "homepage_mobile", "/tmp/out", 0)
	if err != nil {
		t.Fatalf("metadata failure must not fail the capture: %v", err)
	}
	if pc.Title != "" || pc.URL != "" {
		t.Errorf("degraded capture should have empty metadata: %+v", pc)
	}
	if pc.ScreenshotPath == "" {
		t.Error("screenshot should still be recorded")
	}
}

func TestProductPageName(t *testing.T) {
	for n, want := range map[int]string{1: "product_1_desktop", 3: "product_3_desktop"} {
		if got := ProductPageName(n); got != want {
			t.Errorf("ProductPageName(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestContentPreviewTruncates(t *testing.T) {
	long := strings.Repeat("anvils and hammers for every trade ", 30)
	page := &fakePage{
		html: "<html><body><article><p>" + long + "</p></article></body></html>",
	}

	preview := contentPreview(page, "https://acme.example/")
	if preview == "" {
		t.Fatal("expected a non-empty preview")
	}
	if got := len([]rune(preview)); got > previewLimit+1 {
		t.Errorf("preview length = %d runes, want at most %d plus ellipsis", got, previewLimit+1)
	}
}
