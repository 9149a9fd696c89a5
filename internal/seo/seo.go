// Package seo renders the crawler-facing artifacts: sitemap.xml over the
// site's page slugs, and robots.txt pointing at it.
package seo

import (
	"fmt"
	"strings"
)

const (
	defaultChangeFreq = "weekly"
	defaultPriority   = "0.8"
	homepagePriority  = "1.0"
)

// Sitemap builds the urlset document. The "index" slug maps to the site
// root and gets homepage priority; every other slug becomes a sub-path.
// lastMod is the build timestamp (YYYY-MM-DD).
func Sitemap(siteURL string, slugs []string, lastMod string) string {
	var urls []string
	for _, slug := range slugs {
		loc := siteURL
		priority := homepagePriority
		if slug != "index" {
			loc = siteURL + "/" + slug
			priority = defaultPriority
		}
		urls = append(urls, fmt.Sprintf(`  <url>
    <loc>%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%s</priority>
  </url>`, loc, lastMod, defaultChangeFreq, priority))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
%s
</urlset>`, strings.Join(urls, "\n"))
}

// Robots builds robots.txt allowing everything and advertising the sitemap.
func Robots(siteURL string) string {
	return fmt.Sprintf(`User-agent: *
Allow: /

Sitemap: %s/sitemap.xml`, siteURL)
}
