package webui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentContent(t *testing.T) {
	t.Run("PlainTextIsOneParagraph", func(t *testing.T) {
		segments := SegmentContent("Rome is lovely in spring.")

		require.Len(t, segments, 1)
		assert.Equal(t, SegmentParagraph, segments[0].Kind)
		assert.Equal(t, "Rome is lovely in spring.", segments[0].Text)
	})

	t.Run("BareMapURLGetsDecodedLabel", func(t *testing.T) {
		segments := SegmentContent("Check this out: https://www.google.com/maps/search/Paris+France and enjoy.")

		require.Len(t, segments, 3)
		assert.Equal(t, "Check this out:", segments[0].Text)
		assert.True(t, segments[1].IsMapLink())
		assert.Equal(t, "Paris France", segments[1].Label)
		assert.Equal(t, "https://www.google.com/maps/search/Paris+France", segments[1].URL)
		assert.Equal(t, "and enjoy.", segments[2].Text)
	})

	t.Run("QueryFormURLUsesQueryParam", func(t *testing.T) {
		segments := SegmentContent("https://www.google.com/maps/search/?api=1&query=Trevi+Fountain+Rome")

		require.Len(t, segments, 1)
		assert.True(t, segments[0].IsMapLink())
		assert.Equal(t, "Trevi Fountain Rome", segments[0].Label)
	})

	t.Run("MarkdownLinkKeepsItsLabel", func(t *testing.T) {
		content := "Visit the Colosseum.\n🗺️ [the Colosseum](https://www.google.com/maps/search/?api=1&query=the+Colosseum+Rome)"

		segments := SegmentContent(content)

		require.Len(t, segments, 2)
		assert.Equal(t, SegmentParagraph, segments[0].Kind)
		assert.True(t, segments[1].IsMapLink())
		assert.Equal(t, "the Colosseum", segments[1].Label)
		assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=the+Colosseum+Rome", segments[1].URL)
	})

	t.Run("EmptyContentRendersNothing", func(t *testing.T) {
		assert.Empty(t, SegmentContent(""))
		assert.Empty(t, SegmentContent("   \n  "))
	})

	t.Run("NonMapURLStaysPlainText", func(t *testing.T) {
		segments := SegmentContent("Book at https://www.booking.com/hotel/it/roma.html today")

		require.Len(t, segments, 1)
		assert.Equal(t, SegmentParagraph, segments[0].Kind)
	})
}
