package model

import "time"

// Post represents a single published post from the tracked account.
// IDs are opaque strings assigned by the source; within one account they
// increase with recency, which is what the watermark diff relies on.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
	Shares    int       `json:"shares"`
	Replies   int       `json:"replies"`
	MediaKeys []string  `json:"media_keys,omitempty"`
}

// Author is the account profile attached to a fetch.
type Author struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	Verified    bool   `json:"verified"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// MediaKind classifies an attached media object.
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaVideo    MediaKind = "video"
	MediaAnimated MediaKind = "animated_gif"
)

// Media is a displayable attachment referenced by a post's media keys.
type Media struct {
	Key        string    `json:"key"`
	Kind       MediaKind `json:"kind"`
	URL        string    `json:"url,omitempty"`
	PreviewURL string    `json:"preview_url,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
}

// FetchResult is one fetch window: posts newest-first exactly as returned by
// the source (the ordering is the source's contract, never re-sorted here),
// plus the author and media side lists needed to render them.
type FetchResult struct {
	Posts   []Post
	Authors []Author
	Media   []Media
}

// AuthorByID resolves an author from the side list.
func (r FetchResult) AuthorByID(id string) (Author, bool) {
	for _, a := range r.Authors {
		if a.ID == id {
			return a, true
		}
	}
	return Author{}, false
}

// MediaByKey resolves a media attachment from the side list.
func (r FetchResult) MediaByKey(key string) (Media, bool) {
	for _, m := range r.Media {
		if m.Key == key {
			return m, true
		}
	}
	return Media{}, false
}
