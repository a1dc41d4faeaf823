package checks

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/leadsight/leadsight/models"
)

type fakeEvaluator struct {
	err    error
	result map[string]any
}

func (f *fakeEvaluator) Eval(_ string, out any, _ ...any) error {
	if f.err != nil {
		return f.err
	}
	raw, err := json.Marshal(f.result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func TestReadPerformance(t *testing.T) {
	e := &fakeEvaluator{result: map[string]any{
		"hasTiming":          true,
		"loadTimeMs":         1850.4,
		"domContentLoadedMs": 920.0,
		"firstPaintMs":       640.2,
		"imageCount":         12,
		"linkCount":          40,
		"scriptCount":        9,
	}}

	snap := ReadPerformance(e)
	if snap.LoadTimeMs != 1850.4 || snap.DOMContentLoadedMs != 920.0 {
		t.Errorf("timing fields not mapped: %+v", snap)
	}
	if snap.ImageCount != 12 || snap.LinkCount != 40 || snap.ScriptCount != 9 {
		t.Errorf("count fields not mapped: %+v", snap)
	}
}

func TestReadPerformanceNoTimingEntry(t *testing.T) {
	// A page without a navigation-timing entry reports hasTiming=false with
	// whatever counts the probe managed to collect; none of it may leak into
	// the snapshot.
	e := &fakeEvaluator{result: map[string]any{
		"hasTiming":  false,
		"loadTimeMs": 0,
		"imageCount": 7,
	}}

	if snap := ReadPerformance(e); snap != (models.PerformanceSnapshot{}) {
		t.Errorf("snapshot = %+v, want zero value when timing is missing", snap)
	}
}

func TestReadPerformanceProbeFault(t *testing.T) {
	e := &fakeEvaluator{err: errors.New("execution context destroyed")}

	if snap := ReadPerformance(e); snap != (models.PerformanceSnapshot{}) {
		t.Errorf("snapshot = %+v, want zero value on a probe fault", snap)
	}
}
