package audit

import (
	"net/url"
	"strings"
)

// productPathMarkers are the path substrings that mark an anchor as a likely
// product or shop page.
var productPathMarkers = []string{"/products/", "/product/", "/shop/", "/store/"}

// anchorScript reports every anchor href on the page. The DOM resolves
// relative hrefs, so the probe returns absolute URLs.
const anchorScript = `() => {
	try {
		return Array.from(document.querySelectorAll('a[href]')).map(a => a.href);
	} catch (e) {
		return [];
	}
}`

// filterProductLinks keeps the anchors that look like product pages.
// Fragment-only and non-absolute links are excluded, duplicates are removed
// before the cap is applied, and at most max links are returned.
func filterProductLinks(hrefs []string, max int) []string {
	if max <= 0 {
		return nil
	}

	seen := map[string]bool{}
	var links []string

	for _, href := range hrefs {
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}

		u, err := url.Parse(href)
		if err != nil || !u.IsAbs() {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		if !hasProductPath(u.Path) {
			continue
		}

		u.Fragment = ""
		link := u.String()
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)

		if len(links) == max {
			break
		}
	}

	return links
}

func hasProductPath(path string) bool {
	path = strings.ToLower(path)
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	for _, marker := range productPathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}
