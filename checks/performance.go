package checks

import (
	"go.uber.org/zap"

	"github.com/leadsight/leadsight/log"
	"github.com/leadsight/leadsight/models"
)

// Evaluator runs a read-only JS probe in page context and decodes the result.
type Evaluator interface {
	Eval(js string, out any, args ...any) error
}

// timingProbe is the single navigation-timing read. hasTiming gates the whole
// snapshot: a page without a navigation entry yields an empty snapshot, not
// partial data and not an error.
type timingProbe struct {
	HasTiming          bool    `json:"hasTiming"`
	LoadTimeMs         float64 `json:"loadTimeMs"`
	DOMContentLoadedMs float64 `json:"domContentLoadedMs"`
	FirstPaintMs       float64 `json:"firstPaintMs"`
	ImageCount         int     `json:"imageCount"`
	LinkCount          int     `json:"linkCount"`
	ScriptCount        int     `json:"scriptCount"`
}

const timingScript = `() => {
	const out = { hasTiming: false, loadTimeMs: 0, domContentLoadedMs: 0,
		firstPaintMs: 0, imageCount: 0, linkCount: 0, scriptCount: 0 };
	try {
		const entries = performance.getEntriesByType('navigation');
		if (entries.length === 0) return out;
		const t = entries[0];
		out.hasTiming = true;
		out.loadTimeMs = Math.max(0, t.loadEventEnd - t.fetchStart);
		out.domContentLoadedMs = Math.max(0, t.domContentLoadedEventEnd - t.fetchStart);
		const paint = performance.getEntriesByType('paint').find(p => p.name === 'first-paint');
		if (paint) out.firstPaintMs = paint.startTime;
		out.imageCount = document.images.length;
		out.linkCount = document.querySelectorAll('a').length;
		out.scriptCount = document.querySelectorAll('script').length;
	} catch (e) {
		out.hasTiming = false;
	}
	return out;
}`

// ReadPerformance reads the navigation-timing entry for the current page
// load. Missing timing data or a probe fault yields the empty snapshot.
func ReadPerformance(e Evaluator) models.PerformanceSnapshot {
	var probe timingProbe
	if err := e.Eval(timingScript, &probe); err != nil {
		log.Logger.Warn("performance probe failed", zap.Error(err))
		return models.PerformanceSnapshot{}
	}
	if !probe.HasTiming {
		return models.PerformanceSnapshot{}
	}
	return models.PerformanceSnapshot{
		LoadTimeMs:         probe.LoadTimeMs,
		DOMContentLoadedMs: probe.DOMContentLoadedMs,
		FirstPaintMs:       probe.FirstPaintMs,
		ImageCount:         probe.ImageCount,
		LinkCount:          probe.LinkCount,
		ScriptCount:        probe.ScriptCount,
	}
}
