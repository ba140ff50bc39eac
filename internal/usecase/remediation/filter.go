package remediation

import (
	"regexp"
	"strings"
)

// Per-topic link caps and the per-analysis bundle cap.
const (
	maxVideoLinks = 3
	maxWebLinks   = 3
	maxBundles    = 3
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

var videoMarkers = []string{"youtube.com", "youtu.be"}

var educationalMarkers = []string{
	"edu", "khan", "coursera", "edx", "mit", "stanford",
	"biology", "science", "learn", "nationalgeographic",
	"britannica", "study.com",
}

// ExtractURLs pulls every URL out of a free-form text, deduplicated in
// first-seen order.
func ExtractURLs(text string) []string {
	return dedupe(urlPattern.FindAllString(text, -1))
}

// Classify splits URLs into a video bucket and an educational web
// bucket. Non-educational web links are dropped as noise. Both buckets
// are capped and preserve first-seen order.
func Classify(urls []string) (videoLinks, webLinks []string) {
	for _, u := range dedupe(urls) {
		lower := strings.ToLower(u)
		if containsAny(lower, videoMarkers) {
			if len(videoLinks) < maxVideoLinks {
				videoLinks = append(videoLinks, u)
			}
			continue
		}
		if containsAny(lower, educationalMarkers) && len(webLinks) < maxWebLinks {
			webLinks = append(webLinks, u)
		}
	}
	return videoLinks, webLinks
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
