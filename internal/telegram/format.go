package telegram

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"postrelay/internal/model"
)

// Formatter renders one post into an outbound message. The plain and rich
// variants share this interface so the delivery pipeline carries exactly one
// code path regardless of presentation.
type Formatter interface {
	Format(post model.Post, author model.Author, media []model.Media) Message
}

// NewFormatter selects a formatter by name ("plain" or "rich").
func NewFormatter(kind string, disablePreview bool) Formatter {
	if kind == "plain" {
		return &PlainFormatter{DisablePreview: disablePreview}
	}
	return &RichFormatter{DisablePreview: disablePreview}
}

// PostURL builds the public permalink for a post.
func PostURL(handle, id string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", handle, id)
}

// PlainFormatter emits link-style text without markup or attachments.
type PlainFormatter struct {
	DisablePreview bool
}

func (f *PlainFormatter) Format(post model.Post, author model.Author, _ []model.Media) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s posted:\n\n", author.Handle)
	b.WriteString(post.Text)
	b.WriteString("\n\n")
	b.WriteString(PostURL(author.Handle, post.ID))
	return Message{Text: b.String(), DisablePreview: f.DisablePreview}
}

// RichFormatter emits HTML with the author line, engagement counts and a
// photo attachment when the post carries one.
type RichFormatter struct {
	DisablePreview bool
}

func (f *RichFormatter) Format(post model.Post, author model.Author, media []model.Media) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> (@%s)", escapeHTML(author.DisplayName), escapeHTML(author.Handle))
	if author.Verified {
		b.WriteString(" ✓")
	}
	b.WriteString("\n\n")
	b.WriteString(escapeHTML(post.Text))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "❤️ %d  🔁 %d  💬 %d\n", post.Likes, post.Shares, post.Replies)
	fmt.Fprintf(&b, `<a href="%s">View post</a>`, PostURL(author.Handle, post.ID))

	msg := Message{Text: b.String(), ParseMode: tele.ModeHTML, DisablePreview: f.DisablePreview}
	if url := firstDisplayableURL(media); url != "" {
		msg.PhotoURL = url
	}
	return msg
}

// firstDisplayableURL picks the first attachment the chat can render as a
// photo: the photo itself, or the preview frame of a video/gif.
func firstDisplayableURL(media []model.Media) string {
	for _, m := range media {
		switch m.Kind {
		case model.MediaPhoto:
			if m.URL != "" {
				return m.URL
			}
		case model.MediaVideo, model.MediaAnimated:
			if m.PreviewURL != "" {
				return m.PreviewURL
			}
		}
	}
	return ""
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }
