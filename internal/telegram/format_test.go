package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"postrelay/internal/model"
)

var (
	testPost = model.Post{
		ID:       "id42",
		AuthorID: "u1",
		Text:     "hello <world> & friends",
		Likes:    7,
		Shares:   2,
		Replies:  1,
	}
	testAuthor = model.Author{ID: "u1", Handle: "someaccount", DisplayName: "Some Account", Verified: true}
)

func TestPlainFormatter(t *testing.T) {
	f := &PlainFormatter{DisablePreview: true}
	msg := f.Format(testPost, testAuthor, nil)

	assert.Empty(t, msg.ParseMode)
	assert.True(t, msg.DisablePreview)
	assert.Empty(t, msg.PhotoURL)
	assert.Contains(t, msg.Text, "@someaccount")
	assert.Contains(t, msg.Text, "hello <world> & friends", "plain text is not escaped")
	assert.Contains(t, msg.Text, "https://x.com/someaccount/status/id42")
}

func TestRichFormatter(t *testing.T) {
	f := &RichFormatter{}
	msg := f.Format(testPost, testAuthor, nil)

	assert.NotEmpty(t, msg.ParseMode)
	assert.Contains(t, msg.Text, "<b>Some Account</b>")
	assert.Contains(t, msg.Text, "✓", "verified badge")
	assert.Contains(t, msg.Text, "hello &lt;world&gt; &amp; friends")
	assert.Contains(t, msg.Text, "❤️ 7")
	assert.Contains(t, msg.Text, `<a href="https://x.com/someaccount/status/id42">`)
}

func TestRichFormatterUnverifiedHasNoBadge(t *testing.T) {
	author := testAuthor
	author.Verified = false
	msg := (&RichFormatter{}).Format(testPost, author, nil)
	assert.NotContains(t, msg.Text, "✓")
}

func TestRichFormatterPicksDisplayableMedia(t *testing.T) {
	media := []model.Media{
		{Key: "m1", Kind: model.MediaVideo, PreviewURL: "https://example.com/frame.jpg"},
		{Key: "m2", Kind: model.MediaPhoto, URL: "https://example.com/p.jpg"},
	}
	msg := (&RichFormatter{}).Format(testPost, testAuthor, media)
	assert.Equal(t, "https://example.com/frame.jpg", msg.PhotoURL, "first displayable attachment wins")
}

func TestNewFormatterSelection(t *testing.T) {
	assert.IsType(t, &PlainFormatter{}, NewFormatter("plain", true))
	assert.IsType(t, &RichFormatter{}, NewFormatter("rich", false))
	assert.IsType(t, &RichFormatter{}, NewFormatter("", false), "rich is the default")
}
