package bot

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pricecompare-bot/internal/compare"
	"pricecompare-bot/internal/config"
	"pricecompare-bot/internal/session"
	"pricecompare-bot/internal/storage"
)

const (
	testChat  int64 = 42
	adminChat int64 = 99
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return m.Text
	case tgbotapi.EditMessageTextConfig:
		return m.Text
	default:
		t.Fatalf("last sent is %T, not a text message", m)
		return ""
	}
}

type fakeRecorder struct {
	events []storage.ComparisonEvent
	stats  *storage.Statistics
}

func (f *fakeRecorder) RecordComparison(_ context.Context, e storage.ComparisonEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeRecorder) Statistics(context.Context) (*storage.Statistics, error) {
	if f.stats == nil {
		return nil, storage.ErrStatisticsDisabled
	}
	return f.stats, nil
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string, int64, time.Duration) (bool, error) {
	return false, nil
}

type testBot struct {
	*Bot
	api      *fakeAPI
	store    *session.MemoryStore
	recorder *fakeRecorder
}

func newTestBot(t *testing.T, limiter RateLimiter) *testBot {
	t.Helper()
	cfg := &config.Config{
		Admin:      config.AdminConfig{IDs: []int64{adminChat}},
		Calculator: config.CalculatorConfig{CurrencySymbol: "R$", DefaultRows: 2},
		RateLimit:  config.RateLimitConfig{Limit: 30, Window: time.Minute},
	}
	api := &fakeAPI{}
	store := session.NewMemoryStore(cfg.Calculator.DefaultRows)
	rec := &fakeRecorder{}
	return &testBot{
		Bot:      New(api, store, rec, limiter, zap.NewNop(), cfg),
		api:      api,
		store:    store,
		recorder: rec,
	}
}

func (tb *testBot) text(chatID int64, text string) {
	msg := &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	tb.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func (tb *testBot) press(chatID int64, data string) {
	tb.HandleUpdate(context.Background(), tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			Data:    data,
			Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}},
		},
	})
}

func (tb *testBot) session(t *testing.T, chatID int64) session.Session {
	t.Helper()
	sess, err := tb.store.Get(context.Background(), chatID)
	require.NoError(t, err)
	return sess
}

func TestStartShowsEmptySheet(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.text(testChat, "/start")

	require.Len(t, tb.api.sent, 2)
	assert.Contains(t, tb.api.lastText(t), "1) — · — → R$ 0.00/kg")
	assert.Contains(t, tb.api.lastText(t), "2) — · — → R$ 0.00/kg")
	assert.Equal(t, 2, tb.session(t, testChat).Sheet.Len())
}

func TestQuickEntryFillsNextEmptyRow(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.text(testChat, "/start")

	tb.text(testChat, "10 2")
	tb.text(testChat, "8 4")

	sess := tb.session(t, testChat)
	assert.Equal(t, []compare.Row{{Price: "10", Amount: "2"}, {Price: "8", Amount: "4"}}, sess.Sheet.Rows)

	out := tb.api.lastText(t)
	assert.Contains(t, out, "1) 2 kg · R$ 10 → R$ 5.00/kg\n")
	assert.Contains(t, out, "2) 4 kg · R$ 8 → R$ 2.00/kg ✅")
	assert.Contains(t, out, "Mais barato: R$ 2.00/kg (linha 2)")

	tb.text(testChat, "5 1")
	assert.Equal(t, 3, tb.session(t, testChat).Sheet.Len())
}

func TestQuickEntryWithRowNumber(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.text(testChat, "2 R$10,50 2")

	sess := tb.session(t, testChat)
	assert.Equal(t, compare.Row{}, sess.Sheet.Rows[0])
	assert.Equal(t, compare.Row{Price: "10,50", Amount: "2"}, sess.Sheet.Rows[1])

	tb.text(testChat, "9 1 1")
	assert.Equal(t, "❌ "+msgNoRow, tb.api.lastText(t))
}

func TestQuickEntryKeepsMalformedValues(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.text(testChat, "abc 2")

	sess := tb.session(t, testChat)
	assert.Equal(t, compare.Row{Price: "abc", Amount: "2"}, sess.Sheet.Rows[0])
	out := tb.api.lastText(t)
	assert.Contains(t, out, "1) 2 kg · R$ abc → R$ 0.00/kg\n")
	assert.Contains(t, out, "Preencha preço e quantidade")

	tb.text(testChat, "hello")
	assert.Equal(t, msgQuickHint, tb.api.sent[len(tb.api.sent)-2].(tgbotapi.MessageConfig).Text)
	assert.Equal(t, sess.Sheet, tb.session(t, testChat).Sheet)
}

func TestQuickEntryOutOfRangeNumbers(t *testing.T) {
	tb := newTestBot(t, nil)

	require.NotPanics(t, func() {
		tb.text(testChat, "1e400 1")
		tb.text(testChat, "1 1e-20000000")
	})

	sess := tb.session(t, testChat)
	assert.Equal(t, compare.Row{Price: "1e400", Amount: "1"}, sess.Sheet.Rows[0])
	assert.Equal(t, compare.Row{Price: "1", Amount: "1e-20000000"}, sess.Sheet.Rows[1])

	out := tb.api.lastText(t)
	assert.Contains(t, out, "1) 1 kg · R$ 1e400 → R$ 0.00/kg\n")
	assert.Contains(t, out, "Preencha preço e quantidade")
}

func TestEditRowFlow(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.press(testChat, "edit:2")
	require.Len(t, tb.api.requests, 1)
	sess := tb.session(t, testChat)
	assert.Equal(t, session.StepRowPrice, sess.Step)
	assert.Equal(t, 1, sess.EditRow)
	assert.Equal(t, "Linha 2: envie o preço (R$).", tb.api.lastText(t))

	tb.text(testChat, "12")
	assert.Equal(t, session.StepRowAmount, tb.session(t, testChat).Step)
	assert.Equal(t, "Linha 2: envie a quantidade (kg).", tb.api.lastText(t))

	tb.text(testChat, "3")
	sess = tb.session(t, testChat)
	assert.Equal(t, session.StepIdle, sess.Step)
	assert.Equal(t, compare.Row{Price: "12", Amount: "3"}, sess.Sheet.Rows[1])
	assert.Contains(t, tb.api.lastText(t), "2) 3 kg · R$ 12 → R$ 4.00/kg ✅")
}

func TestCancelEdit(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.press(testChat, "edit:1")
	tb.text(testChat, cancelText)

	sess := tb.session(t, testChat)
	assert.Equal(t, session.StepIdle, sess.Step)
	assert.Equal(t, compare.NewSheet(2), sess.Sheet)
}

func TestEditRowRemovedMeanwhile(t *testing.T) {
	tb := newTestBot(t, nil)
	require.NoError(t, tb.store.Save(context.Background(), testChat, session.Session{
		Step:    session.StepRowPrice,
		Sheet:   compare.NewSheet(1),
		EditRow: 3,
	}))

	tb.text(testChat, "10")

	sess := tb.session(t, testChat)
	assert.Equal(t, session.StepIdle, sess.Step)
	assert.Equal(t, compare.NewSheet(1), sess.Sheet)
}

func TestCallbacksEditSheetInPlace(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.press(testChat, "unit:volume")
	tb.press(testChat, "scale:toggle")
	tb.press(testChat, "row:add")

	sess := tb.session(t, testChat)
	assert.Equal(t, compare.Volume, sess.Sheet.Unit)
	assert.Equal(t, compare.ScaleSmall, sess.Sheet.Scale)
	assert.Equal(t, 3, sess.Sheet.Len())

	last, ok := tb.api.sent[len(tb.api.sent)-1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 7, last.MessageID)
	assert.Contains(t, last.Text, "quantidades em ml")

	for i := 0; i < 5; i++ {
		tb.press(testChat, "row:remove")
	}
	assert.Equal(t, 1, tb.session(t, testChat).Sheet.Len())
}

func removesReplyKeyboard(sent []tgbotapi.Chattable) bool {
	for _, c := range sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			if _, ok := m.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove); ok {
				return true
			}
		}
	}
	return false
}

func TestCallbackDuringEditDropsCancelKeyboard(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.press(testChat, "edit:1")
	require.Equal(t, session.StepRowPrice, tb.session(t, testChat).Step)
	tb.api.sent = nil

	tb.press(testChat, "row:add")

	sess := tb.session(t, testChat)
	assert.Equal(t, session.StepIdle, sess.Step)
	assert.Equal(t, 3, sess.Sheet.Len())
	require.Len(t, tb.api.sent, 2)
	assert.True(t, removesReplyKeyboard(tb.api.sent))
	_, ok := tb.api.sent[1].(tgbotapi.EditMessageTextConfig)
	assert.True(t, ok)

	// Without a pending edit there is no keyboard to drop.
	tb.api.sent = nil
	tb.press(testChat, "row:add")
	require.Len(t, tb.api.sent, 1)
	assert.False(t, removesReplyKeyboard(tb.api.sent))
}

func TestCommandDuringEditDropsCancelKeyboard(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.press(testChat, "edit:2")
	tb.api.sent = nil

	tb.text(testChat, "/volume")

	assert.Equal(t, session.StepIdle, tb.session(t, testChat).Step)
	assert.True(t, removesReplyKeyboard(tb.api.sent))
	assert.Contains(t, tb.api.lastText(t), "→ R$ 0.00/L")
}

func TestSmallScaleComputesPerKilo(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.text(testChat, "/small")
	tb.text(testChat, "6 1000")

	assert.Contains(t, tb.api.lastText(t), "1) 1000 g · R$ 6 → R$ 6.00/kg ✅")
}

func TestClearRecordsOnlyFilledComparisons(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.text(testChat, "/clear")
	assert.Empty(t, tb.recorder.events)

	tb.text(testChat, "10 2")
	tb.press(testChat, "rows:clear")

	require.Len(t, tb.recorder.events, 1)
	event := tb.recorder.events[0]
	assert.Equal(t, storage.SourceClear, event.Source)
	assert.Equal(t, 1, event.ValidRows)
	assert.Equal(t, 2, event.RowCount)
	assert.Equal(t, compare.NewSheet(2), tb.session(t, testChat).Sheet)
}

func TestExportSendsWorkbook(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.text(testChat, "10 2")

	tb.text(testChat, "/export")

	doc, ok := tb.api.sent[len(tb.api.sent)-1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "comparison_weight.xlsx", file.Name)
	assert.NotEmpty(t, file.Bytes)

	require.Len(t, tb.recorder.events, 1)
	assert.Equal(t, storage.SourceExport, tb.recorder.events[0].Source)
}

func TestStats(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.text(testChat, "/stats")
	assert.Equal(t, "❌ "+msgNotAdmin, tb.api.lastText(t))

	tb.text(adminChat, "/stats")
	assert.Equal(t, msgStatsOff, tb.api.lastText(t))

	tb.recorder.stats = &storage.Statistics{Total: 5, Today: 1, Week: 3, ByUnit: map[string]int{"weight": 4, "volume": 1}}
	tb.text(adminChat, "/stats")
	out := tb.api.lastText(t)
	assert.Contains(t, out, "Comparações: 5")
	assert.Contains(t, out, "• volume: 1\n• weight: 4")
}

func TestUnknownCommand(t *testing.T) {
	tb := newTestBot(t, nil)

	tb.text(testChat, "/nope")

	assert.Equal(t, "❌ "+msgUnknownCmd, tb.api.lastText(t))
}

func TestRateLimitDropsUpdates(t *testing.T) {
	tb := newTestBot(t, denyAll{})

	tb.text(testChat, "/start")
	tb.press(testChat, "row:add")

	assert.Empty(t, tb.api.sent)
	assert.Empty(t, tb.api.requests)
}

func TestFormatSheetTie(t *testing.T) {
	s := compare.NewSheet(3).
		UpdateRow(0, compare.FieldPrice, "10").UpdateRow(0, compare.FieldAmount, "2").
		UpdateRow(2, compare.FieldPrice, "5").UpdateRow(2, compare.FieldAmount, "1")

	out := FormatSheet(compare.Evaluate(s), "R$")

	assert.Contains(t, out, "Mais barato: R$ 5.00/kg (linhas 1, 3)")
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "10,50", NormalizeNumber("  R$ 10,50 ", "R$"))
	assert.Equal(t, "R$10", NormalizeNumber("R$10", ""))
	assert.Equal(t, "abc", NormalizeNumber(" abc", "R$"))
}
