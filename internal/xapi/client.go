package xapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postrelay/internal/model"
)

// requestFloor is the smallest window the timeline endpoint accepts. Smaller
// configured windows still request this many and trim locally.
const requestFloor = 5

// Client fetches the most recent posts for an account over the v2 API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a new source client. baseURL should be like
// "https://api.twitter.com/2" (no trailing slash). If empty, it defaults to
// the public v2 endpoint.
func NewClient(baseURL, token string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.twitter.com/2"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// userResp mirrors the subset of the user lookup payload we use.
type userResp struct {
	Data *struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Username        string `json:"username"`
		Verified        bool   `json:"verified"`
		ProfileImageURL string `json:"profile_image_url"`
	} `json:"data"`
}

// timelineResp mirrors the subset of the timeline payload we use.
type timelineResp struct {
	Data []struct {
		ID            string `json:"id"`
		AuthorID      string `json:"author_id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
		} `json:"public_metrics"`
		Attachments struct {
			MediaKeys []string `json:"media_keys"`
		} `json:"attachments"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID              string `json:"id"`
			Name            string `json:"name"`
			Username        string `json:"username"`
			Verified        bool   `json:"verified"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"users"`
		Media []struct {
			MediaKey        string `json:"media_key"`
			Type            string `json:"type"`
			URL             string `json:"url"`
			PreviewImageURL string `json:"preview_image_url"`
			Width           int    `json:"width"`
			Height          int    `json:"height"`
		} `json:"media"`
	} `json:"includes"`
}

// FetchLatest returns up to maxResults of the account's most recent original
// posts, newest first, excluding reposts and replies. A window with zero
// posts is a successful, empty result.
func (c *Client) FetchLatest(ctx context.Context, handle string, maxResults int) (model.FetchResult, error) {
	var zero model.FetchResult
	if maxResults <= 0 {
		maxResults = requestFloor
	}
	userID, err := c.lookupUser(ctx, handle)
	if err != nil {
		return zero, err
	}

	reqN := maxResults
	if reqN < requestFloor {
		reqN = requestFloor
	}
	if reqN > 100 {
		reqN = 100
	}
	q := url.Values{
		"max_results":  {fmt.Sprintf("%d", reqN)},
		"exclude":      {"retweets,replies"},
		"tweet.fields": {"created_at,public_metrics,attachments"},
		"expansions":   {"author_id,attachments.media_keys"},
		"user.fields":  {"name,username,verified,profile_image_url"},
		"media.fields": {"url,preview_image_url,type,width,height"},
	}
	endpoint := fmt.Sprintf("%s/users/%s/tweets", c.baseURL, url.PathEscape(userID))

	var raw timelineResp
	if err := c.getJSON(ctx, endpoint+"?"+q.Encode(), "fetch timeline", &raw); err != nil {
		return zero, err
	}

	out := model.FetchResult{}
	for _, t := range raw.Data {
		created, _ := time.Parse(time.RFC3339, t.CreatedAt)
		out.Posts = append(out.Posts, model.Post{
			ID:        t.ID,
			AuthorID:  t.AuthorID,
			Text:      t.Text,
			CreatedAt: created,
			Likes:     t.PublicMetrics.LikeCount,
			Shares:    t.PublicMetrics.RetweetCount,
			Replies:   t.PublicMetrics.ReplyCount,
			MediaKeys: t.Attachments.MediaKeys,
		})
	}
	if len(out.Posts) > maxResults {
		out.Posts = out.Posts[:maxResults]
	}
	for _, u := range raw.Includes.Users {
		out.Authors = append(out.Authors, model.Author{
			ID:          u.ID,
			Handle:      u.Username,
			DisplayName: u.Name,
			Verified:    u.Verified,
			AvatarURL:   u.ProfileImageURL,
		})
	}
	for _, m := range raw.Includes.Media {
		out.Media = append(out.Media, model.Media{
			Key:        m.MediaKey,
			Kind:       convertMediaKind(m.Type),
			URL:        m.URL,
			PreviewURL: m.PreviewImageURL,
			Width:      m.Width,
			Height:     m.Height,
		})
	}
	return out, nil
}

// lookupUser resolves a handle to the account id.
func (c *Client) lookupUser(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	endpoint := fmt.Sprintf("%s/users/by/username/%s", c.baseURL, url.PathEscape(handle))
	var raw userResp
	if err := c.getJSON(ctx, endpoint, "lookup user", &raw); err != nil {
		return "", err
	}
	if raw.Data == nil || raw.Data.ID == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, handle)
	}
	return raw.Data.ID, nil
}

// getJSON performs an authorized GET and decodes the body, classifying
// failures into the package error taxonomy.
func (c *Client) getJSON(ctx context.Context, rawURL, op string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("xapi: %s: status %d", op, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	return nil
}

func convertMediaKind(t string) model.MediaKind {
	switch t {
	case "video":
		return model.MediaVideo
	case "animated_gif":
		return model.MediaAnimated
	default:
		return model.MediaPhoto
	}
}
