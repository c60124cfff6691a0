package chat

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// placeRe matches "Visit X", "Dine at Y" style phrases in an assistant reply
// and captures the place name up to the first delimiter.
var placeRe = regexp.MustCompile(`(?i)(?:Visit|Dine at|Explore|Try|Experience|Enjoy|Go to|See|Check out|Discover)\s+([^-\n.;,]*?)(?:\s*[-:.;,]|$|\n)`)

// mapsURL builds a Google Maps search link for a place within a destination.
func mapsURL(placeName, destination string) string {
	query := url.QueryEscape(placeName + " " + destination)
	return "https://www.google.com/maps/search/?api=1&query=" + query
}

// enhanceWithMapsLinks appends a map link under each recommended place in the
// reply. Each place is linked at most once.
func enhanceWithMapsLinks(reply, destination string) string {
	if destination == "" {
		return reply
	}

	enhanced := reply
	seen := make(map[string]bool)
	for _, match := range placeRe.FindAllStringSubmatch(reply, -1) {
		place := strings.TrimSpace(match[1])
		if len(place) <= 2 || seen[strings.ToLower(place)] {
			continue
		}
		// Drop trailing qualifiers like " - a local favourite" or " (closed Mondays)".
		place = strings.TrimSpace(strings.SplitN(place, " - ", 2)[0])
		place = strings.TrimSpace(strings.SplitN(place, " (", 2)[0])
		if len(place) <= 2 {
			continue
		}
		seen[strings.ToLower(place)] = true

		link := mapsURL(place, destination)
		if strings.Contains(enhanced, link) {
			continue
		}
		original := match[0]
		enhanced = strings.Replace(enhanced, original, fmt.Sprintf("%s\n🗺️ [%s](%s)", original, place, link), 1)
	}
	return enhanced
}
