package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postrelay/internal/delivery"
	"postrelay/internal/model"
	"postrelay/internal/telegram"
	"postrelay/internal/watermark"
	"postrelay/internal/xapi"
)

type fakeSource struct {
	res   model.FetchResult
	err   error
	calls int
}

func (f *fakeSource) FetchLatest(ctx context.Context, handle string, maxResults int) (model.FetchResult, error) {
	f.calls++
	return f.res, f.err
}

type fakePoster struct {
	sent   []telegram.Message
	failAt map[int]bool
	calls  int
}

func (f *fakePoster) PostMessage(ctx context.Context, msg telegram.Message) error {
	idx := f.calls
	f.calls++
	if f.failAt[idx] {
		return &telegram.NetworkError{Err: errors.New("boom")}
	}
	f.sent = append(f.sent, msg)
	return nil
}

// errStore wraps the memory store with injectable failures.
type errStore struct {
	inner    *watermark.MemoryStore
	readErr  error
	writeErr error
}

func (s *errStore) Read(ctx context.Context) (string, bool, error) {
	if s.readErr != nil {
		return "", false, s.readErr
	}
	return s.inner.Read(ctx)
}

func (s *errStore) Write(ctx context.Context, id string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.inner.Write(ctx, id)
}

func window(ids ...string) model.FetchResult {
	res := model.FetchResult{
		Authors: []model.Author{{ID: "a1", Handle: "someaccount", DisplayName: "Some Account"}},
	}
	for _, id := range ids {
		res.Posts = append(res.Posts, model.Post{ID: id, AuthorID: "a1", Text: "post " + id})
	}
	return res
}

func newRunner(src SourceClient, store watermark.Store, poster *fakePoster) *Runner {
	pipe := delivery.New(poster, &telegram.PlainFormatter{DisablePreview: true}, nil, time.Millisecond, 3500)
	return &Runner{
		Source:     src,
		Store:      store,
		Pipeline:   pipe,
		Notifier:   poster,
		Account:    "someaccount",
		MaxResults: 5,
	}
}

func TestRunFirstRunDeliversWholeWindow(t *testing.T) {
	ctx := context.Background()
	store := watermark.NewMemoryStore()
	poster := &fakePoster{}
	r := newRunner(&fakeSource{res: window("id5", "id4", "id3", "id2", "id1")}, store, poster)

	out, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RunOK, out.Status)
	assert.Equal(t, 5, out.ItemsProcessed)
	assert.Equal(t, "id5", out.NewestItemID)

	// Oldest first on the wire.
	require.Len(t, poster.sent, 5)
	assert.Contains(t, poster.sent[0].Text, "post id1")
	assert.Contains(t, poster.sent[4].Text, "post id5")

	id, ok, _ := store.Read(ctx)
	assert.True(t, ok)
	assert.Equal(t, "id5", id)
}

func TestRunIsIdempotentAcrossCycles(t *testing.T) {
	ctx := context.Background()
	store := watermark.NewMemoryStore()
	poster := &fakePoster{}
	src := &fakeSource{res: window("id5", "id4", "id3")}
	r := newRunner(src, store, poster)

	first, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.ItemsProcessed)

	second, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RunOK, second.Status)
	assert.Equal(t, 0, second.ItemsProcessed)
	assert.Len(t, poster.sent, 3, "no re-delivery when nothing changed upstream")
}

func TestRunWatermarkMidWindow(t *testing.T) {
	ctx := context.Background()
	store := watermark.NewMemoryStore()
	require.NoError(t, store.Write(ctx, "id3"))
	poster := &fakePoster{}
	r := newRunner(&fakeSource{res: window("id5", "id4", "id3", "id2", "id1")}, store, poster)

	out, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, out.ItemsProcessed)
	require.Len(t, poster.sent, 2)
	assert.Contains(t, poster.sent[0].Text, "post id4")
	assert.Contains(t, poster.sent[1].Text, "post id5")
}

func TestRunRateLimitedEndsCleanly(t *testing.T) {
	ctx := context.Background()
	store := watermark.NewMemoryStore()
	require.NoError(t, store.Write(ctx, "id3"))
	poster := &fakePoster{}
	r := newRunner(&fakeSource{err: xapi.ErrRateLimited}, store, poster)

	out, err := r.Run(ctx)
	require.NoError(t, err, "rate limiting is expected, not an error")
	assert.Equal(t, model.RunRateLimited, out.Status)
	assert.Equal(t, 0, out.ItemsProcessed)
	assert.Empty(t, poster.sent, "no error notification for rate limiting")

	id, _, _ := store.Read(ctx)
	assert.Equal(t, "id3", id, "watermark unchanged")
}

func TestRunFetchFailureNotifiesAndSurfaces(t *testing.T) {
	ctx := context.Background()
	poster := &fakePoster{}
	fetchErr := &xapi.NetworkError{Op: "fetch timeline", Err: errors.New("connection reset")}
	r := newRunner(&fakeSource{err: fetchErr}, watermark.NewMemoryStore(), poster)

	out, err := r.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, model.RunError, out.Status)
	require.Len(t, poster.sent, 1, "best-effort notification goes to the chat")
	assert.Contains(t, poster.sent[0].Text, "failed")
}

func TestRunEmptyFetchIsOK(t *testing.T) {
	ctx := context.Background()
	store := watermark.NewMemoryStore()
	require.NoError(t, store.Write(ctx, "id3"))
	poster := &fakePoster{}
	r := newRunner(&fakeSource{res: model.FetchResult{}}, store, poster)

	out, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RunOK, out.Status)
	assert.Equal(t, 0, out.ItemsProcessed)
	assert.Empty(t, out.NewestItemID)

	id, _, _ := store.Read(ctx)
	assert.Equal(t, "id3", id)
}

func TestRunPartialFailureStillAdvancesWatermark(t *testing.T) {
	ctx := context.Background()
	store := watermark.NewMemoryStore()
	// Second send of the batch bounces.
	poster := &fakePoster{failAt: map[int]bool{1: true}}
	r := newRunner(&fakeSource{res: window("id3", "id2", "id1")}, store, poster)

	out, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RunOK, out.Status)
	assert.Equal(t, 2, out.ItemsProcessed)
	assert.Equal(t, "id3", out.NewestItemID)

	id, ok, _ := store.Read(ctx)
	assert.True(t, ok)
	assert.Equal(t, "id3", id, "watermark jumps past the failed item; it is not retried")
}

func TestRunStoreReadFailureScansWholeWindow(t *testing.T) {
	ctx := context.Background()
	store := &errStore{inner: watermark.NewMemoryStore(), readErr: errors.New("storage down")}
	poster := &fakePoster{}
	r := newRunner(&fakeSource{res: window("id2", "id1")}, store, poster)

	out, err := r.Run(ctx)
	require.NoError(t, err, "read failure favors availability over strictness")
	assert.Equal(t, 2, out.ItemsProcessed)
}

func TestRunStoreWriteFailureDoesNotFailRun(t *testing.T) {
	ctx := context.Background()
	store := &errStore{inner: watermark.NewMemoryStore(), writeErr: errors.New("storage down")}
	poster := &fakePoster{}
	r := newRunner(&fakeSource{res: window("id1")}, store, poster)

	out, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RunOK, out.Status)
	assert.Equal(t, 1, out.ItemsProcessed)
}

func TestRunValidationFailure(t *testing.T) {
	r := &Runner{} // nothing wired
	out, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.RunError, out.Status)
}

func TestRunBudgetOverrunSurfacesAsError(t *testing.T) {
	store := watermark.NewMemoryStore()
	poster := &fakePoster{}
	r := newRunner(&fakeSource{res: window("id3", "id2", "id1")}, store, poster)
	// Pipeline pacing of 50ms per gap against a 60ms budget: the batch
	// cannot finish inside the window.
	r.Pipeline = delivery.New(poster, &telegram.PlainFormatter{}, nil, 50*time.Millisecond, 3500)
	r.Budget = 60 * time.Millisecond

	out, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.RunError, out.Status)
	assert.Less(t, out.ItemsProcessed, 3)
	if out.ItemsProcessed > 0 {
		id, ok, _ := store.Read(context.Background())
		assert.True(t, ok)
		assert.Equal(t, "id3", id, "delivered items are persisted even on overrun")
	}
}
