package bot

import (
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"casino-table-bot/internal/config"
)

// recorder answers every Bot API call with a sent message and remembers
// which methods were called.
type recorder struct {
	mu      sync.Mutex
	methods []string
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	r.methods = append(r.methods, path.Base(req.URL.Path))
	r.mu.Unlock()
	body := `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"group"}}}`
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.methods...)
}

func newTestBot(t *testing.T) (*tele.Bot, *recorder) {
	t.Helper()
	rec := &recorder{}
	b, err := tele.NewBot(tele.Settings{Offline: true, Client: &http.Client{Transport: rec}})
	require.NoError(t, err)
	return b, rec
}

func message(b *tele.Bot, chatID int64, chatType tele.ChatType, userID int64) tele.Context {
	return b.NewContext(tele.Update{Message: &tele.Message{
		Text:   "/table",
		Chat:   &tele.Chat{ID: chatID, Type: chatType},
		Sender: &tele.User{ID: userID},
	}})
}

func passes(mw tele.MiddlewareFunc, c tele.Context) bool {
	called := false
	_ = mw(func(tele.Context) error {
		called = true
		return nil
	})(c)
	return called
}

func TestWhitelistMiddlewareProperty(t *testing.T) {
	b, _ := newTestBot(t)
	rapid.Check(t, func(t *rapid.T) {
		chats := rapid.SliceOfNDistinct(rapid.Int64Range(-1_000_000, -1), 1, 10, rapid.ID[int64]).Draw(t, "chats")
		chatID := rapid.Int64Range(-1_000_000, -1).Draw(t, "chatID")
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: chats}}

		allowed := false
		for _, id := range chats {
			allowed = allowed || id == chatID
		}
		got := passes(WhitelistMiddleware(cfg, NewSeenUsers()), message(b, chatID, tele.ChatGroup, 7))
		if got != allowed {
			t.Fatalf("chat %d whitelisted=%v but passed=%v", chatID, allowed, got)
		}
	})
}

func TestWhitelistMiddlewarePrivateChat(t *testing.T) {
	b, _ := newTestBot(t)
	cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: []int64{-100}}}
	seen := NewSeenUsers()
	mw := WhitelistMiddleware(cfg, seen)

	assert.False(t, passes(mw, message(b, 7, tele.ChatPrivate, 7)))
	assert.True(t, passes(mw, message(b, -100, tele.ChatGroup, 7)))
	assert.True(t, seen.Has(7))
	assert.True(t, passes(mw, message(b, 7, tele.ChatPrivate, 7)))

	open := WhitelistMiddleware(&config.Config{}, NewSeenUsers())
	assert.True(t, passes(open, message(b, 8, tele.ChatPrivate, 8)))
}

func TestAdminMiddleware(t *testing.T) {
	b, rec := newTestBot(t)
	cfg := &config.Config{Admin: config.AdminConfig{IDs: []int64{1}}}
	mw := AdminMiddleware(cfg)

	assert.True(t, passes(mw, message(b, -100, tele.ChatGroup, 1)))
	assert.Empty(t, rec.calls())

	assert.False(t, passes(mw, message(b, -100, tele.ChatGroup, 2)))
	assert.Equal(t, []string{"sendMessage"}, rec.calls())
}

func TestRecoveryMiddleware(t *testing.T) {
	b, rec := newTestBot(t)
	h := RecoveryMiddleware()(func(tele.Context) error { panic("boom") })

	assert.NotPanics(t, func() {
		assert.NoError(t, h(message(b, -100, tele.ChatGroup, 1)))
	})
	assert.Equal(t, []string{"sendMessage"}, rec.calls())
}

func TestSeenUsersConcurrent(t *testing.T) {
	seen := NewSeenUsers()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen.Add(i)
		}()
	}
	wg.Wait()
	for i := int64(0); i < 50; i++ {
		assert.True(t, seen.Has(i))
	}
	assert.False(t, seen.Has(50))
}
