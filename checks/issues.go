package checks

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadsight/leadsight/models"
)

// Run executes the fixed check battery over the captured homepage: meta
// description, alt-text coverage, H1 count, transport security and load time.
// An unexpected fault is downgraded to a single Error-category issue so the
// remaining checks and the audit itself keep going.
func Run(pageURL, html string, snap models.PerformanceSnapshot, slowLoad time.Duration) (issues []models.Issue) {
	defer func() {
		if r := recover(); r != nil {
			issues = append(issues, models.Issue{
				Category:    models.IssueError,
				Description: fmt.Sprintf("check battery fault: %v", r),
			})
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []models.Issue{{
			Category:    models.IssueError,
			Description: fmt.Sprintf("check battery fault: %v", err),
		}}
	}

	if desc, _ := doc.Find(`meta[name="description"]`).Attr("content"); strings.TrimSpace(desc) == "" {
		issues = append(issues, models.Issue{
			Category:    models.IssueSEO,
			Description: "Missing meta description",
		})
	}

	missingAlt := 0
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if alt, ok := s.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			missingAlt++
		}
	})
	if missingAlt > 0 {
		issues = append(issues, models.Issue{
			Category:    models.IssueAccessibility,
			Description: fmt.Sprintf("%d images missing alt text", missingAlt),
		})
	}

	switch h1s := doc.Find("h1").Length(); {
	case h1s == 0:
		issues = append(issues, models.Issue{
			Category:    models.IssueSEO,
			Description: "No H1 heading found",
		})
	case h1s > 1:
		issues = append(issues, models.Issue{
			Category:    models.IssueSEO,
			Description: fmt.Sprintf("Multiple H1 headings found (%d)", h1s),
		})
	}

	if u, err := url.Parse(pageURL); err != nil || u.Scheme != "https" {
		issues = append(issues, models.Issue{
			Category:    models.IssueSecurity,
			Description: "Site not served over HTTPS",
		})
	}

	if threshold := float64(slowLoad.Milliseconds()); snap.LoadTimeMs > 0 && snap.LoadTimeMs > threshold {
		issues = append(issues, models.Issue{
			Category:    models.IssuePerformance,
			Description: fmt.Sprintf("Slow page load: %.0fms (threshold %.0fms)", snap.LoadTimeMs, threshold),
		})
	}

	return issues
}
