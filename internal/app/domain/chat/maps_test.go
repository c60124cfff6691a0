package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapsURL(t *testing.T) {
	url := mapsURL("Trevi Fountain", "Rome")
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Trevi+Fountain+Rome", url)
}

func TestEnhanceWithMapsLinks(t *testing.T) {
	t.Run("AddsLinkAfterRecommendation", func(t *testing.T) {
		reply := "Visit the Colosseum - an iconic amphitheater."

		enhanced := enhanceWithMapsLinks(reply, "Rome")

		assert.Contains(t, enhanced, "[the Colosseum](https://www.google.com/maps/search/?api=1&query=the+Colosseum+Rome)")
		assert.Contains(t, enhanced, "an iconic amphitheater")
	})

	t.Run("DedupesRepeatedPlaces", func(t *testing.T) {
		reply := "Visit Trastevere, then later Explore Trastevere, it rewards wandering."

		enhanced := enhanceWithMapsLinks(reply, "Rome")

		assert.Equal(t, 1, strings.Count(enhanced, "query=Trastevere+Rome"))
	})

	t.Run("SkipsShortCaptures", func(t *testing.T) {
		reply := "Try it, you might like it."

		assert.Equal(t, reply, enhanceWithMapsLinks(reply, "Rome"))
	})

	t.Run("NoDestinationNoChange", func(t *testing.T) {
		reply := "Visit the Louvre."

		assert.Equal(t, reply, enhanceWithMapsLinks(reply, ""))
	})

	t.Run("StripsParentheticalQualifier", func(t *testing.T) {
		reply := "Dine at Da Enzo (book ahead)\n"

		enhanced := enhanceWithMapsLinks(reply, "Rome")

		assert.Contains(t, enhanced, "query=Da+Enzo+Rome")
		assert.NotContains(t, enhanced, "book+ahead")
	})
}
