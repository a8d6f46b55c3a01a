package nudge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushBody(t *testing.T) {
	n := &Nudge{
		Title:      "Notice the Loop",
		Paragraphs: []string{"Your brain loves shortcuts.", "Catch one today."},
		Quote:      "Awareness is the first win.",
	}
	assert.Equal(t, "Your brain loves shortcuts.", n.PushBody())
}

func TestPushBodySkipsBlankParagraphs(t *testing.T) {
	n := &Nudge{
		Paragraphs: []string{"", "   ", "Catch one today."},
		Quote:      "Awareness is the first win.",
	}
	assert.Equal(t, "Catch one today.", n.PushBody())
}

func TestPushBodyFallsBackToQuote(t *testing.T) {
	n := &Nudge{
		Title: "Notice the Loop",
		Quote: "Awareness is the first win.",
	}
	assert.Equal(t, "Awareness is the first win.", n.PushBody())

	blank := &Nudge{Paragraphs: []string{"", "  "}, Quote: "Still here."}
	assert.Equal(t, "Still here.", blank.PushBody())
}

func TestMessageBody(t *testing.T) {
	n := &Nudge{
		Title:      "Notice the Loop",
		Paragraphs: []string{"Your brain loves shortcuts.", "", "Catch one today."},
		Quote:      "Awareness is the first win.",
	}
	want := "Notice the Loop\n\nYour brain loves shortcuts.\n\nCatch one today.\n\nAwareness is the first win."
	assert.Equal(t, want, n.MessageBody())
}

func TestMessageBodyWithoutQuote(t *testing.T) {
	n := &Nudge{
		Title:      "Notice the Loop",
		Paragraphs: []string{"Catch one today."},
	}
	assert.Equal(t, "Notice the Loop\n\nCatch one today.", n.MessageBody())
}
