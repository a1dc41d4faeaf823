package detect

import (
	"strings"
	"testing"

	"github.com/leadsight/leadsight/models"
)

func TestQualifyOverlays(t *testing.T) {
	candidates := []overlayCandidate{
		// Hidden elements never qualify, email input or not.
		{Selector: `[class*="modal"]`, Visible: false, HasEmailInput: true, Text: "subscribe to our newsletter"},
		// Visible but with neither an email input nor an intent keyword.
		{Selector: `[class*="overlay"]`, Visible: true, Text: "cookie preferences and settings"},
		// Visible with a keyword but too little text to be a real popup.
		{Selector: `[class*="popup"]`, Visible: true, Text: "subscribe"},
		// Qualifies on the email input.
		{Selector: `[class*="newsletter"]`, Visible: true, HasEmailInput: true, Text: "join the list for updates", Width: 400, Height: 300},
		// Qualifies on an intent keyword alone.
		{Selector: `[role="dialog"]`, Visible: true, Text: "sign up to our newsletter today"},
	}

	overlays := qualifyOverlays(candidates)
	if len(overlays) != 2 {
		t.Fatalf("qualified %d overlays, want 2: %+v", len(overlays), overlays)
	}
	if !overlays[0].HasEmailInput || overlays[0].Selector != `[class*="newsletter"]` {
		t.Errorf("first overlay = %+v, want the newsletter element", overlays[0])
	}
	if overlays[0].Width != 400 || overlays[0].Height != 300 {
		t.Errorf("overlay size = %dx%d, want 400x300", overlays[0].Width, overlays[0].Height)
	}
}

func TestDescribeOverlaysTruncatesPreview(t *testing.T) {
	long := strings.Repeat("join our mailing list today ", 10)
	described := describeOverlays([]overlayCandidate{
		{Selector: `[class*="popup"]`, Visible: true, HasEmailInput: true, Text: long},
	})
	if len(described) != 1 {
		t.Fatalf("described %d overlays, want 1", len(described))
	}
	if got := len([]rune(described[0].TextPreview)); got != 120 {
		t.Errorf("preview length = %d runes, want 120", got)
	}
}

func TestClassifyPopupType(t *testing.T) {
	tests := []struct {
		name     string
		overlays []overlayCandidate
		want     models.PopupType
	}{
		{
			name: "email input and discount text",
			overlays: []overlayCandidate{
				{HasEmailInput: true, Text: "get 20% off your first order"},
			},
			want: models.PopupTypeEmailDiscount,
		},
		{
			name: "email input only",
			overlays: []overlayCandidate{
				{HasEmailInput: true, Text: "join our mailing list"},
			},
			want: models.PopupTypeEmailSignup,
		},
		{
			name: "discount text only",
			overlays: []overlayCandidate{
				{Text: "limited offer ends tonight"},
			},
			want: models.PopupTypeDiscount,
		},
		{
			name: "neither specific signal",
			overlays: []overlayCandidate{
				{Text: "welcome to our brand new site"},
			},
			want: models.PopupTypeGeneral,
		},
		{
			name: "combined beats separate overlays",
			overlays: []overlayCandidate{
				{Text: "flash sale, big savings"},
				{HasEmailInput: true, Text: "10% discount when you subscribe"},
			},
			want: models.PopupTypeEmailDiscount,
		},
		{
			name:     "no overlays",
			overlays: nil,
			want:     models.PopupTypeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyPopupType(tt.overlays); got != tt.want {
				t.Errorf("classifyPopupType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyPopupTypeScansFullText(t *testing.T) {
	// The discount wording sits well past the 120-rune preview bound; the
	// classification must still see it.
	text := strings.Repeat("welcome to our community of makers and crafters ", 4) +
		"get 20% off your first order"
	overlays := []overlayCandidate{
		{HasEmailInput: true, Visible: true, Text: text},
	}

	if got := classifyPopupType(overlays); got != models.PopupTypeEmailDiscount {
		t.Errorf("classifyPopupType() = %q, want %q", got, models.PopupTypeEmailDiscount)
	}
	if preview := describeOverlays(overlays)[0].TextPreview; strings.Contains(preview, "20% off") {
		t.Fatalf("test text too short, discount wording landed inside the preview: %q", preview)
	}
}

func TestMatchEmailPlatforms(t *testing.T) {
	globals := map[string]bool{"_learnq": true, "Sumo": true}
	scripts := []string{
		"https://cdn.example.com/app.js",
		"https://js.hs-scripts.com/123456.js",
	}

	primary, all := matchEmailPlatforms(globals, scripts)
	if primary != "Klaviyo" {
		t.Errorf("primary = %q, want Klaviyo (first registry match)", primary)
	}
	if len(all) != 3 {
		t.Fatalf("matched %d platforms, want 3: %v", len(all), all)
	}
	// Registry order, not detection-input order.
	want := []string{"Klaviyo", "HubSpot", "Sumo"}
	for i, name := range want {
		if all[i] != name {
			t.Errorf("all[%d] = %q, want %q", i, all[i], name)
		}
	}
}

func TestMatchEmailPlatformsNoMatch(t *testing.T) {
	primary, all := matchEmailPlatforms(map[string]bool{}, []string{"https://cdn.example.com/app.js"})
	if primary != "" || len(all) != 0 {
		t.Errorf("expected no matches, got primary=%q all=%v", primary, all)
	}
}
