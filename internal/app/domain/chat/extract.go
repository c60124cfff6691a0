package chat

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/voyagent/voyagent/internal/models"
)

var extractBlockRe = regexp.MustCompile(`(?s)\|\|\|EXTRACT\|\|\|(.*?)\|\|\|END\|\|\|`)

// parseExtraction pulls the |||EXTRACT|||{json}|||END||| block out of an
// assistant reply. When the block parses, the returned reply has the block
// removed; when it does not, the reply is returned untouched so the user at
// least sees something.
func parseExtraction(reply string) (clean string, prefs models.TripPreferences, found bool) {
	match := extractBlockRe.FindStringSubmatch(reply)
	if match == nil {
		return reply, prefs, false
	}

	payload := strings.TrimSpace(match[1])
	// Models sometimes wrap the JSON in a markdown fence despite instructions.
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimSuffix(payload, "```")
	payload = strings.TrimSpace(payload)

	if payload == "" || payload == "{}" {
		return strings.TrimSpace(extractBlockRe.ReplaceAllString(reply, "")), prefs, false
	}
	if err := json.Unmarshal([]byte(payload), &prefs); err != nil {
		return reply, models.TripPreferences{}, false
	}

	return strings.TrimSpace(extractBlockRe.ReplaceAllString(reply, "")), prefs, true
}
