package simhash

import (
	"strings"

	"golang.org/x/net/html"
)

// shingleSize is the tag n-gram length used for structural fingerprints.
const shingleSize = 3

// FingerprintDOM fingerprints the sequence of opening tag names, ignoring
// text and attributes. Documents with fewer than shingleSize tags are
// fingerprinted from the raw tag sequence.
func FingerprintDOM(htmlStr string) uint64 {
	tags := tagSequence(htmlStr)
	if len(tags) < shingleSize {
		return fold(tags)
	}

	shingles := make([]string, 0, len(tags)-shingleSize+1)
	for i := 0; i+shingleSize <= len(tags); i++ {
		shingles = append(shingles, strings.Join(tags[i:i+shingleSize], "_"))
	}
	return fold(shingles)
}

// DOMDistance is the Hamming distance between the structural fingerprints
// of two documents.
func DOMDistance(a, b string) int {
	return Distance(FingerprintDOM(a), FingerprintDOM(b))
}

func tagSequence(htmlStr string) []string {
	z := html.NewTokenizer(strings.NewReader(htmlStr))
	var tags []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tags = append(tags, string(name))
		}
	}
}
