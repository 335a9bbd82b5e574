package bot

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/attendance-bot/internal/dialog"
)

type fakeStates struct {
	item *dialog.Item
	err  error
}

func (f *fakeStates) Get(_ context.Context, chatID int64) (*dialog.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.item == nil {
		return &dialog.Item{ChatID: chatID, State: dialog.StateIdle, Payload: dialog.Payload{}}, nil
	}
	return f.item, nil
}

func (f *fakeStates) Set(context.Context, int64, dialog.State, dialog.Payload) error { return f.err }
func (f *fakeStates) Reset(context.Context, int64) error { return f.err }

// telegram records the Bot API methods called and the texts sent.
type telegram struct {
	mu      sync.Mutex
	methods []string
	texts   []string
}

func (tg *telegram) called(method string) bool {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	for _, m := range tg.methods {
		if m == method {
			return true
		}
	}
	return false
}

func (tg *telegram) sent() []string {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	return append([]string(nil), tg.texts...)
}

func newTestBot(t *testing.T, states stateStore) (*Bot, *telegram, *bytes.Buffer) {
	t.Helper()
	tg := &telegram{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		method := path.Base(r.URL.Path)
		tg.mu.Lock()
		tg.methods = append(tg.methods, method)
		if txt := r.PostForm.Get("text"); txt != "" {
			tg.texts = append(tg.texts, txt)
		}
		tg.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if method == "getMe" {
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Attendance","username":"attendance_bot"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	}))
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithClient("token", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("bot api: %v", err)
	}
	var logs bytes.Buffer
	b := &Bot{api: api, log: slog.New(slog.NewTextHandler(&logs, nil)), states: states}
	return b, tg, &logs
}

func TestHandleDocumentStateErrorRepliesGenerically(t *testing.T) {
	b, tg, logs := newTestBot(t, &fakeStates{err: errors.New("connection reset")})

	b.handleDocument(context.Background(), &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		From:     &tgbotapi.User{ID: 42},
		Document: &tgbotapi.Document{FileID: "file-1"},
	})

	if tg.called("getFile") {
		t.Fatal("document must not be downloaded without a dialog state")
	}
	if sent := tg.sent(); len(sent) != 1 || sent[0] != "Something went wrong, try again." {
		t.Fatalf("unexpected replies %q", sent)
	}
	if !strings.Contains(logs.String(), "load dialog state") || !strings.Contains(logs.String(), "connection reset") {
		t.Fatalf("state error not logged: %s", logs.String())
	}
}

func TestClearPrevStep(t *testing.T) {
	b, tg, logs := newTestBot(t, &fakeStates{err: errors.New("connection reset")})
	b.clearPrevStep(context.Background(), 42)
	if tg.called("editMessageReplyMarkup") {
		t.Fatal("no card should be edited when the state cannot be loaded")
	}
	if !strings.Contains(logs.String(), "connection reset") {
		t.Fatalf("state error not logged: %s", logs.String())
	}

	b, tg, _ = newTestBot(t, &fakeStates{item: &dialog.Item{
		ChatID:  42,
		State:   dialog.StateEditCounts,
		Payload: dialog.Payload{dialog.KeyLastMID: float64(7)},
	}})
	b.clearPrevStep(context.Background(), 42)
	if !tg.called("editMessageReplyMarkup") {
		t.Fatal("expected the last card to lose its buttons")
	}
}
