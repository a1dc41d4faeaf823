package sources

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/leadsight/leadsight/config"
	"github.com/leadsight/leadsight/log"
	"github.com/leadsight/leadsight/models"
)

// Extractor produces target URLs from one input method.
type Extractor interface {
	Extract(ctx context.Context) ([]string, error)
}

// ignoredPatterns filters out social profiles, directories and aggregators
// that are never worth auditing as client sites.
var ignoredPatterns = []string{
	"facebook.com", "instagram.com", "twitter.com", "linkedin.com",
	"yelp.com", "tripadvisor.com", "google.com", "maps.google.com",
	"youtube.com", "tiktok.com", "pinterest.com", "directory",
}

// Resolve collects target URLs from the inline list, the CSV file and the
// Places search, then normalizes and de-duplicates them by host.
func Resolve(ctx context.Context, cfg config.InputConfig) ([]string, error) {
	raw := append([]string{}, cfg.Sites...)

	var extractors []Extractor
	if cfg.CSV != "" {
		extractors = append(extractors, NewCSVFile(cfg.CSV))
	}
	if cfg.PlacesQuery != "" {
		extractors = append(extractors, NewPlacesSearch(cfg.PlacesQuery, cfg.PlacesAPIKey))
	}

	for _, e := range extractors {
		urls, err := e.Extract(ctx)
		if err != nil {
			return nil, err
		}
		raw = append(raw, urls...)
	}

	sites := filterSites(raw)
	if len(sites) == 0 {
		return nil, models.NewAuditError(models.ErrCodeInvalidInput, "no target sites configured", nil)
	}
	return sites, nil
}

// filterSites normalizes raw URLs and drops blanks, malformed URLs, ignored
// domains and duplicate hosts, preserving first-seen order.
func filterSites(raw []string) []string {
	seen := map[string]bool{}
	var sites []string

	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !strings.Contains(r, "://") {
			r = "https://" + r
		}

		u, err := url.Parse(r)
		if err != nil || u.Host == "" {
			log.Logger.Warn("skipping invalid target URL", zap.String("url", r))
			continue
		}

		host := strings.ToLower(u.Host)
		if seen[host] || isIgnoredHost(host) {
			continue
		}
		seen[host] = true
		sites = append(sites, r)
	}

	return sites
}

func isIgnoredHost(host string) bool {
	for _, pattern := range ignoredPatterns {
		if strings.Contains(host, pattern) {
			return true
		}
	}
	return false
}
