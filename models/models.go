package models

import (
	"net/url"
	"strings"
	"time"
)

// Classification is the audit bucket a site lands in. It doubles as the
// directory name the site's artifacts are grouped under.
type Classification string

const (
	ClassificationPopup   Classification = "popup_detected"
	ClassificationNoPopup Classification = "no_popup"
)

// Classify derives the audit bucket from the popup finding.
func Classify(hasPopup bool) Classification {
	if hasPopup {
		return ClassificationPopup
	}
	return ClassificationNoPopup
}

// PopupType labels what kind of popup was observed on a site.
type PopupType string

const (
	PopupTypeNone          PopupType = "None"
	PopupTypeEmailSignup   PopupType = "Email Signup"
	PopupTypeDiscount      PopupType = "Discount Offer"
	PopupTypeEmailDiscount PopupType = "Email + Discount"
	PopupTypeGeneral       PopupType = "General Popup"
)

// OverlayDescriptor describes one DOM element that qualified as a popup
// candidate during the overlay scan.
type OverlayDescriptor struct {
	MatchedSelector string `json:"matchedSelector"`
	HasEmailInput   bool   `json:"hasEmailInput"`
	TextPreview     string `json:"textPreview"`
	CSSClasses      string `json:"cssClasses"`
	ElementID       string `json:"elementId"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
}

// PopupFinding is the outcome of popup and email-platform detection for one
// site. It is computed once, right after homepage navigation, and never
// changes afterwards.
type PopupFinding struct {
	HasPopup             bool                `json:"hasPopup"`
	PopupType            PopupType           `json:"popupType"`
	EmailPlatform        string              `json:"emailPlatform,omitempty"`
	EmailPlatformDetails []string            `json:"emailPlatformDetails,omitempty"`
	PopupDetails         []OverlayDescriptor `json:"popupDetails,omitempty"`
}

// PlatformFinding reports whether the site runs on a recognized hosted
// commerce platform.
type PlatformFinding struct {
	IsRecognizedCommercePlatform bool `json:"isRecognizedCommercePlatform"`
}

// PageCapture is one screenshot plus the page metadata extracted alongside it.
type PageCapture struct {
	Name            string  `json:"name"`
	ScreenshotPath  string  `json:"screenshotPath"`
	Title           string  `json:"title"`
	URL             string  `json:"url"`
	MetaDescription string  `json:"metaDescription"`
	FirstHeading    string  `json:"firstHeadingText"`
	ClientLoadMs    float64 `json:"clientLoadTimestamp"`
	ContentPreview  string  `json:"contentPreview,omitempty"`
}

// PerformanceSnapshot holds the metrics derived from a single
// navigation-timing read. A page with no navigation-timing entry yields the
// zero value.
type PerformanceSnapshot struct {
	LoadTimeMs         float64 `json:"loadTimeMs"`
	DOMContentLoadedMs float64 `json:"domContentLoadedMs"`
	FirstPaintMs       float64 `json:"firstPaintMs"`
	ImageCount         int     `json:"imageCount"`
	LinkCount          int     `json:"linkCount"`
	ScriptCount        int     `json:"scriptCount"`
}

// IssueCategory groups issues found by the fixed check battery.
type IssueCategory string

const (
	IssueSEO           IssueCategory = "SEO"
	IssueAccessibility IssueCategory = "Accessibility"
	IssueSecurity      IssueCategory = "Security"
	IssuePerformance   IssueCategory = "Performance"
	IssueError         IssueCategory = "Error"
)

// Issue is one finding from the check battery.
type Issue struct {
	Category    IssueCategory `json:"category"`
	Description string        `json:"description"`
}

// AuditResult is the root aggregate for one audited site. When Success is
// false only URL, SiteName, Timestamp and Error carry data.
type AuditResult struct {
	URL            string              `json:"url"`
	SiteName       string              `json:"siteName"`
	Timestamp      time.Time           `json:"timestamp"`
	Platform       PlatformFinding     `json:"platform"`
	Popups         PopupFinding        `json:"popups"`
	Classification Classification      `json:"classification,omitempty"`
	Pages          []PageCapture       `json:"pages,omitempty"`
	Metrics        PerformanceSnapshot `json:"metrics"`
	Issues         []Issue             `json:"issues,omitempty"`
	OutputDir      string              `json:"outputLocation,omitempty"`
	Success        bool                `json:"success"`
	Error          string              `json:"error,omitempty"`
}

// SiteName derives a filesystem-safe identifier from the host of a raw URL.
// Every character outside [a-z0-9] becomes an underscore.
func SiteName(rawURL string) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(strings.TrimPrefix(host, "www."))

	var b strings.Builder
	for _, r := range host {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
