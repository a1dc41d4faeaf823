package detect

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leadsight/leadsight/log"
	"github.com/leadsight/leadsight/models"
)

// overlaySelectors is the fixed list of structural/attribute selectors
// associated with popups, modals, overlays and newsletter widgets.
var overlaySelectors = []string{
	`[class*="popup"]`,
	`[id*="popup"]`,
	`[class*="modal"]`,
	`[id*="modal"]`,
	`[class*="overlay"]`,
	`[class*="lightbox"]`,
	`[class*="newsletter"]`,
	`[id*="newsletter"]`,
	`[class*="subscribe"]`,
	`[class*="signup"]`,
	`[class*="email-capture"]`,
	`[class*="exit-intent"]`,
	`[role="dialog"]`,
	`[aria-modal="true"]`,
	`.klaviyo-form`,
}

// intentKeywords qualify an overlay as subscription-related.
var intentKeywords = []string{"subscribe", "newsletter", "email", "discount", "offer", "save"}

// discountKeywords classify an overlay's text as a discount pitch.
var discountKeywords = []string{"discount", "% off", "offer", "save", "coupon", "promo code", "free shipping"}

// minOverlayTextLen rejects near-empty decorative elements that the broad
// selectors inevitably match.
const minOverlayTextLen = 10

// overlayCandidate is the raw element data the overlay scan reports back;
// qualification happens on the Go side.
type overlayCandidate struct {
	Selector      string `json:"selector"`
	Visible       bool   `json:"visible"`
	HasEmailInput bool   `json:"hasEmailInput"`
	Text          string `json:"text"`
	Classes       string `json:"classes"`
	ID            string `json:"id"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
}

const overlayScript = `(selectors) => {
	const results = [];
	try {
		const seen = new Set();
		for (const sel of selectors) {
			let matched;
			try { matched = document.querySelectorAll(sel); } catch (e) { continue; }
			for (const el of matched) {
				if (seen.has(el)) continue;
				seen.add(el);
				const style = window.getComputedStyle(el);
				const rect = el.getBoundingClientRect();
				const visible = rect.width > 0 && rect.height > 0 &&
					style.display !== 'none' && style.visibility !== 'hidden';
				results.push({
					selector: sel,
					visible: visible,
					hasEmailInput: !!el.querySelector('input[type="email"], input[name*="email"]'),
					text: (el.innerText || '').toLowerCase().slice(0, 1000),
					classes: el.className ? String(el.className).slice(0, 200) : '',
					id: el.id || '',
					width: Math.round(rect.width),
					height: Math.round(rect.height),
				});
			}
		}
	} catch (e) {}
	return results;
}`

const emailPlatformScript = `(names) => {
	const out = { globals: {}, scripts: [] };
	try {
		for (const n of names) {
			try { out.globals[n] = typeof window[n] !== 'undefined'; } catch (e) { out.globals[n] = false; }
		}
		out.scripts = Array.from(document.querySelectorAll('script[src]')).map(s => s.src);
	} catch (e) {}
	return out;
}`

type emailPlatformSurface struct {
	Globals map[string]bool `json:"globals"`
	Scripts []string        `json:"scripts"`
}

// Popups waits out the settle delay so delayed popups can render, then scans
// script state for email-marketing integrations and the DOM for visible
// subscription overlays. Detection is advisory: any internal fault logs a
// warning and collapses to the zero finding, because a false negative is
// preferable to aborting the audit.
func Popups(ctx context.Context, e Evaluator, settleDelay time.Duration) models.PopupFinding {
	finding := models.PopupFinding{PopupType: models.PopupTypeNone}

	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
		return finding
	}

	var surface emailPlatformSurface
	if err := e.Eval(emailPlatformScript, &surface, emailPlatformGlobals()); err != nil {
		log.Logger.Warn("email platform probe failed", zap.Error(err))
	} else {
		finding.EmailPlatform, finding.EmailPlatformDetails = matchEmailPlatforms(surface.Globals, surface.Scripts)
	}

	var candidates []overlayCandidate
	if err := e.Eval(overlayScript, &candidates, overlaySelectors); err != nil {
		log.Logger.Warn("overlay probe failed", zap.Error(err))
		return finding
	}

	overlays := qualifyOverlays(candidates)
	finding.PopupDetails = describeOverlays(overlays)
	finding.HasPopup = len(overlays) > 0
	finding.PopupType = classifyPopupType(overlays)
	return finding
}

// qualifyOverlays keeps the candidates that are visible, carry an email input
// or a subscription-intent keyword, and have enough text to be a real popup.
func qualifyOverlays(candidates []overlayCandidate) []overlayCandidate {
	var overlays []overlayCandidate
	for _, c := range candidates {
		if !c.Visible {
			continue
		}
		if !c.HasEmailInput && !containsAny(c.Text, intentKeywords) {
			continue
		}
		if len(strings.TrimSpace(c.Text)) <= minOverlayTextLen {
			continue
		}
		overlays = append(overlays, c)
	}
	return overlays
}

// describeOverlays converts qualified candidates into the reportable shape.
// Only the stored preview is truncated; classification sees the full text.
func describeOverlays(overlays []overlayCandidate) []models.OverlayDescriptor {
	var described []models.OverlayDescriptor
	for _, c := range overlays {
		described = append(described, models.OverlayDescriptor{
			MatchedSelector: c.Selector,
			HasEmailInput:   c.HasEmailInput,
			TextPreview:     truncate(c.Text, 120),
			CSSClasses:      c.Classes,
			ElementID:       c.ID,
			Width:           c.Width,
			Height:          c.Height,
		})
	}
	return described
}

// classifyPopupType applies the tie-break rule across all matched overlays:
// email input + discount text beats email alone beats discount alone beats
// a general popup.
func classifyPopupType(overlays []overlayCandidate) models.PopupType {
	if len(overlays) == 0 {
		return models.PopupTypeNone
	}

	var hasEmail, hasDiscount bool
	for _, o := range overlays {
		discount := containsAny(strings.ToLower(o.Text), discountKeywords)
		if o.HasEmailInput && discount {
			return models.PopupTypeEmailDiscount
		}
		hasEmail = hasEmail || o.HasEmailInput
		hasDiscount = hasDiscount || discount
	}

	switch {
	case hasEmail:
		return models.PopupTypeEmailSignup
	case hasDiscount:
		return models.PopupTypeDiscount
	default:
		return models.PopupTypeGeneral
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
