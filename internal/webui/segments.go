package webui

import (
	"net/url"
	"regexp"
	"strings"
)

const mapsPrefix = "https://www.google.com/maps/search/"

// Segment kinds.
type SegmentKind int

const (
	SegmentParagraph SegmentKind = iota
	SegmentMapLink
)

// Segment is one rendered span of an assistant turn: either a plain
// paragraph or a labeled map link.
type Segment struct {
	Kind  SegmentKind
	Text  string
	URL   string
	Label string
}

// IsMapLink reports whether the segment renders as a labeled map link.
func (s Segment) IsMapLink() bool { return s.Kind == SegmentMapLink }

// Matches both bare map URLs and markdown links wrapping one.
var mapLinkRe = regexp.MustCompile(`\[([^\]\n]+)\]\((https://www\.google\.com/maps/search/[^\s)]+)\)|(https://www\.google\.com/maps/search/[^\s)\]]+)`)

// SegmentContent splits assistant content around map-search links. Matching
// spans become map-link segments with a human-readable label; non-empty
// remainders become paragraphs; empty spans produce nothing.
func SegmentContent(content string) []Segment {
	var segments []Segment
	appendText := func(text string) {
		text = strings.TrimSpace(text)
		if text != "" {
			segments = append(segments, Segment{Kind: SegmentParagraph, Text: text})
		}
	}

	rest := content
	for {
		loc := mapLinkRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		appendText(rest[:loc[0]])

		var label, link string
		if loc[2] >= 0 {
			label = rest[loc[2]:loc[3]]
			link = rest[loc[4]:loc[5]]
		} else {
			link = rest[loc[6]:loc[7]]
			label = mapLinkLabel(link)
		}
		segments = append(segments, Segment{Kind: SegmentMapLink, URL: link, Label: label})

		rest = rest[loc[1]:]
	}
	appendText(rest)

	return segments
}

// mapLinkLabel derives a display label from a map URL: the query parameter
// when present, otherwise the URL-decoded path remainder.
func mapLinkLabel(link string) string {
	raw := strings.TrimPrefix(link, mapsPrefix)
	if u, err := url.Parse(link); err == nil {
		if q := u.Query().Get("query"); q != "" {
			return q
		}
	}
	raw = strings.TrimPrefix(raw, "?")
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
