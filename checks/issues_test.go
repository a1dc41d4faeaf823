package checks

import (
	"strings"
	"testing"
	"time"

	"github.com/leadsight/leadsight/models"
)

const cleanPage = `<!DOCTYPE html>
<html><head>
<meta name="description" content="A perfectly fine page">
</head><body>
<h1>Welcome</h1>
<img src="a.png" alt="a"><img src="b.png" alt="b">
</body></html>`

func TestRunCleanPage(t *testing.T) {
	issues := Run("https://example.com", cleanPage, models.PerformanceSnapshot{LoadTimeMs: 1200}, 3*time.Second)
	if len(issues) != 0 {
		t.Errorf("clean page produced issues: %+v", issues)
	}
}

func TestRunMissingAltText(t *testing.T) {
	html := `<html><head><meta name="description" content="x"></head><body>
<h1>Hi</h1>
<img src="a.png"><img src="b.png" alt=""><img src="c.png"><img src="d.png" alt="ok">
</body></html>`

	issues := Run("https://example.com", html, models.PerformanceSnapshot{}, 3*time.Second)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	if issues[0].Category != models.IssueAccessibility {
		t.Errorf("category = %q, want Accessibility", issues[0].Category)
	}
	if !strings.Contains(issues[0].Description, "3") {
		t.Errorf("description %q should state the count 3", issues[0].Description)
	}
}

func TestRunHeadingChecks(t *testing.T) {
	noH1 := `<html><head><meta name="description" content="x"></head><body><h2>Only h2</h2></body></html>`
	issues := Run("https://example.com", noH1, models.PerformanceSnapshot{}, 3*time.Second)
	if len(issues) != 1 || issues[0].Category != models.IssueSEO {
		t.Fatalf("no-H1 page: got %+v, want one SEO issue", issues)
	}

	twoH1 := `<html><head><meta name="description" content="x"></head><body><h1>a</h1><h1>b</h1></body></html>`
	issues = Run("https://example.com", twoH1, models.PerformanceSnapshot{}, 3*time.Second)
	if len(issues) != 1 || !strings.Contains(issues[0].Description, "Multiple H1") {
		t.Fatalf("multi-H1 page: got %+v, want one multiple-H1 issue", issues)
	}
}

func TestRunBatteryOrderAndCategories(t *testing.T) {
	// Worst case: every check fires, in battery order.
	html := `<html><body><img src="a.png"></body></html>`
	snap := models.PerformanceSnapshot{LoadTimeMs: 5000}

	issues := Run("http://example.com", html, snap, 3*time.Second)

	want := []models.IssueCategory{
		models.IssueSEO,           // missing meta description
		models.IssueAccessibility, // missing alt text
		models.IssueSEO,           // no H1
		models.IssueSecurity,      // not HTTPS
		models.IssuePerformance,   // slow load
	}
	if len(issues) != len(want) {
		t.Fatalf("got %d issues, want %d: %+v", len(issues), len(want), issues)
	}
	for i, cat := range want {
		if issues[i].Category != cat {
			t.Errorf("issues[%d].Category = %q, want %q", i, issues[i].Category, cat)
		}
	}
	if !strings.Contains(issues[4].Description, "5000") {
		t.Errorf("performance issue %q should include the measured value", issues[4].Description)
	}
}

func TestRunEmptySnapshotSkipsLoadCheck(t *testing.T) {
	issues := Run("https://example.com", cleanPage, models.PerformanceSnapshot{}, 3*time.Second)
	for _, issue := range issues {
		if issue.Category == models.IssuePerformance {
			t.Errorf("empty snapshot must not trigger the load-time check: %+v", issue)
		}
	}
}
