package domain

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxArticles caps the related articles listed for one event slot.
const MaxArticles = 8

// articleURLRe finds the first http(s) URL in a link cell, which may hold
// several comma- or space-separated links.
var articleURLRe = regexp.MustCompile(`(?i)https?://[^\s,]+`)

// Article is a news link related to an event slot.
type Article struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Domain string `json:"domain"`
}

// RelatedArticles collects articles from every event row sharing e's date,
// start and end. Rows without a URL or a title are skipped and URLs are
// de-duplicated in table order.
func RelatedArticles(events EventTable, e Event) []Article {
	var out []Article
	seen := make(map[string]struct{})
	for _, row := range events {
		if !row.SameSlot(e) {
			continue
		}
		link := firstURL(row.Link)
		title := strings.TrimSpace(row.Title)
		if link == "" || title == "" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, Article{URL: link, Title: title, Domain: linkDomain(link)})
		if len(out) == MaxArticles {
			break
		}
	}
	return out
}

func firstURL(s string) string {
	return articleURLRe.FindString(s)
}

func linkDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.Replace(u.Host, "www.", "", 1)
}
