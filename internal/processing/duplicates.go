package processing

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jonathan/company-pulse/internal/aggregator"
)

// DuplicateWordOverlap is the shared-word ratio at which two titles are the same story.
const DuplicateWordOverlap = 0.7

// minOverlapWordLength ignores short words when comparing titles.
const minOverlapWordLength = 4

type seenTitle struct {
	url   string
	title string
	words map[string]bool
}

// duplicateTracker remembers accepted articles and detects repeats by URL or title.
type duplicateTracker struct {
	urls   map[string]string
	hashes map[string]string
	seen   []seenTitle
}

func newDuplicateTracker() *duplicateTracker {
	return &duplicateTracker{urls: make(map[string]string), hashes: make(map[string]string)}
}

// check returns the URL of the accepted article that this one duplicates, if any.
func (d *duplicateTracker) check(title, url string) (string, bool) {
	if key := aggregator.NormalizeURL(url); key != "" {
		if first, ok := d.urls[key]; ok {
			return first, true
		}
	}

	norm := aggregator.NormalizeTitle(title)
	if url, ok := d.hashes[titleHash(norm)]; ok {
		return url, true
	}

	words := significantWords(norm)
	for _, s := range d.seen {
		if norm != "" && s.title != "" && (strings.Contains(s.title, norm) || strings.Contains(norm, s.title)) {
			return s.url, true
		}
		if WordOverlap(words, s.words) >= DuplicateWordOverlap {
			return s.url, true
		}
	}
	return "", false
}

// add records an accepted article.
func (d *duplicateTracker) add(title, url string) {
	if key := aggregator.NormalizeURL(url); key != "" {
		d.urls[key] = url
	}
	norm := aggregator.NormalizeTitle(title)
	d.hashes[titleHash(norm)] = url
	d.seen = append(d.seen, seenTitle{url: url, title: norm, words: significantWords(norm)})
}

func titleHash(norm string) string {
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}

func significantWords(norm string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(norm) {
		if len([]rune(w)) >= minOverlapWordLength {
			words[w] = true
		}
	}
	return words
}

// WordOverlap returns shared words over the larger set size, or 0 if either is empty.
func WordOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range a {
		if b[w] {
			shared++
		}
	}
	return float64(shared) / float64(max(len(a), len(b)))
}
