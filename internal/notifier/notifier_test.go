package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"MarketSim/internal/model"
	"MarketSim/internal/pipeline"
	"MarketSim/internal/render"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBotAPI answers getMe and sendMessage like the Bot API does.
type fakeBotAPI struct {
	mu       sync.Mutex
	failures int
	sent     []map[string]string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"sim","username":"sim_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failures > 0 {
			f.failures--
			_, _ = w.Write([]byte(`{"ok":false,"error_code":500,"description":"Internal Server Error"}`))
			return
		}
		f.sent = append(f.sent, map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		})
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":12345,"type":"private"},"text":"ok"}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, fake *fakeBotAPI) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifier(Config{
		BotToken:       "test-token",
		ChatID:         "12345",
		APIEndpoint:    srv.URL + "/bot%s/%s",
		MaxRetries:     2,
		RetryDelayBase: time.Millisecond,
		Options:        render.DefaultOptions(),
	})
	require.NoError(t, err)
	return n
}

func testResult(t *testing.T) *model.SimulationResult {
	t.Helper()
	res, err := pipeline.Run(model.DefaultParameters(), 42, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return res
}

func TestNewTelegramNotifier_InvalidChatID(t *testing.T) {
	srv := httptest.NewServer(&fakeBotAPI{})
	defer srv.Close()
	_, err := NewTelegramNotifier(Config{BotToken: "t", ChatID: "not-a-number", APIEndpoint: srv.URL + "/bot%s/%s"})
	assert.Error(t, err)
}

func TestRender_SendsHTMLReport(t *testing.T) {
	fake := &fakeBotAPI{}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.Render(context.Background(), testResult(t)))
	require.Len(t, fake.sent, 1)
	msg := fake.sent[0]
	assert.Equal(t, "12345", msg["chat_id"])
	assert.Equal(t, "HTML", msg["parse_mode"])
	assert.Contains(t, msg["text"], "<b>MarketSim</b> | 2024-06-14")
	assert.Contains(t, msg["text"], "<pre>")
}

func TestSendWithRetry_RecoversAfterFailures(t *testing.T) {
	fake := &fakeBotAPI{failures: 2}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.SendWithRetry(context.Background(), "hello", 2))
	assert.Len(t, fake.sent, 1)
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	fake := &fakeBotAPI{failures: 10}
	n := newTestNotifier(t, fake)

	err := n.SendWithRetry(context.Background(), "hello", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 attempts exhausted")
	assert.Empty(t, fake.sent)
}

func TestSendWithRetry_StopsOnCancel(t *testing.T) {
	fake := &fakeBotAPI{failures: 10}
	n := newTestNotifier(t, fake)
	n.retryDelayBase = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.SendWithRetry(ctx, "hello", 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleUpdate(t *testing.T) {
	fake := &fakeBotAPI{}
	n := newTestNotifier(t, fake)

	var got []string
	handler := func(cmd string) string {
		got = append(got, cmd)
		if cmd == "/quiet" {
			return ""
		}
		return "reply to " + cmd
	}

	n.handleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{Text: " /simulate ", Chat: &tgbotapi.Chat{ID: 12345}}}, handler)
	n.handleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{Text: "/quiet", Chat: &tgbotapi.Chat{ID: 12345}}}, handler)
	n.handleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{Text: "/simulate", Chat: &tgbotapi.Chat{ID: 999}}}, handler)
	n.handleUpdate(tgbotapi.Update{}, handler)

	assert.Equal(t, []string{"/simulate", "/quiet"}, got)
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "reply to /simulate", fake.sent[0]["text"])
}

func TestFormatReport_FitsTelegramLimit(t *testing.T) {
	res := testResult(t)
	out := FormatReport(res, render.Options{PreviewRows: 500, HistogramBins: 50})
	assert.LessOrEqual(t, len([]rune(out)), maxMessageLen)
	assert.True(t, strings.HasSuffix(out, "</pre>"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	out := truncate("<pre>"+strings.Repeat("x", 50), 20)
	assert.Len(t, []rune(out), 20)
	assert.True(t, strings.HasSuffix(out, "…</pre>"))
	out = truncate(strings.Repeat("y", 50), 20)
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestFormatParams(t *testing.T) {
	out := FormatParams(model.DefaultParameters(), 42)
	assert.Contains(t, out, "Trading days: 252")
	assert.Contains(t, out, "Daily volatility: 1.0%")
	assert.Contains(t, out, "Seed: 42")
}
