package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pricecompare-bot/internal/compare"
	"pricecompare-bot/internal/session"
)

// handleQuickEntry fills rows from free text typed while no edit is pending.
//
//	"<row> <price> <amount>" sets both fields of that row
//	"<price> <amount>"       fills the first empty row, adding one if needed
func (b *Bot) handleQuickEntry(ctx context.Context, chatID int64, sess session.Session, text string) {
	currency := b.cfg.Calculator.CurrencySymbol
	fields := strings.Fields(text)

	var index int
	switch len(fields) {
	case 3:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			b.sendText(chatID, msgQuickHint)
			return
		}
		index = n - 1
		if index < 0 || index >= sess.Sheet.Len() {
			b.sendError(chatID, msgNoRow)
			return
		}
		fields = fields[1:]
	case 2:
		index = firstEmptyRow(sess.Sheet)
		if index == sess.Sheet.Len() {
			sess.Sheet = sess.Sheet.AddRow()
		}
	default:
		b.sendText(chatID, msgQuickHint)
		b.showSheet(chatID, sess.Sheet)
		return
	}

	price := NormalizeNumber(fields[0], currency)
	amount := NormalizeNumber(fields[1], currency)

	sess.Sheet = sess.Sheet.
		UpdateRow(index, compare.FieldPrice, price).
		UpdateRow(index, compare.FieldAmount, amount)

	if !b.saveSession(ctx, chatID, sess) {
		return
	}
	b.showSheet(chatID, sess.Sheet)
}

func (b *Bot) handleRowPrice(ctx context.Context, chatID int64, sess session.Session, text string) {
	b.handleRowField(ctx, chatID, sess, text, compare.FieldPrice)
}

func (b *Bot) handleRowAmount(ctx context.Context, chatID int64, sess session.Session, text string) {
	b.handleRowField(ctx, chatID, sess, text, compare.FieldAmount)
}

func (b *Bot) handleRowField(ctx context.Context, chatID int64, sess session.Session, text string, field compare.Field) {
	if strings.TrimSpace(text) == cancelText {
		b.cancelEdit(ctx, chatID, sess)
		return
	}

	// The row may be gone if the sheet changed under a pending edit.
	if sess.EditRow < 0 || sess.EditRow >= sess.Sheet.Len() {
		b.sendError(chatID, msgNoRow)
		b.cancelEdit(ctx, chatID, sess)
		return
	}

	value := NormalizeNumber(text, b.cfg.Calculator.CurrencySymbol)
	sess.Sheet = sess.Sheet.UpdateRow(sess.EditRow, field, value)

	if field == compare.FieldPrice {
		sess.Step = session.StepRowAmount
		if !b.saveSession(ctx, chatID, sess) {
			return
		}
		b.promptField(chatID, sess)
		return
	}

	b.logger.Debug("Row updated",
		zap.Int64("chat_id", chatID),
		zap.Int("row", sess.EditRow))

	sess.Step = session.StepIdle
	sess.EditRow = 0
	if !b.saveSession(ctx, chatID, sess) {
		return
	}

	msg := tgbotapi.NewMessage(chatID, "✅")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)
	b.showSheet(chatID, sess.Sheet)
}

// startEdit asks for the price and then the amount of the row at index.
func (b *Bot) startEdit(ctx context.Context, chatID int64, sess session.Session, index int) {
	if index < 0 || index >= sess.Sheet.Len() {
		b.sendError(chatID, msgNoRow)
		return
	}

	sess.Step = session.StepRowPrice
	sess.EditRow = index
	if !b.saveSession(ctx, chatID, sess) {
		return
	}
	b.promptField(chatID, sess)
}

func (b *Bot) promptField(chatID int64, sess session.Session) {
	var text string
	switch sess.Step {
	case session.StepRowPrice:
		text = fmt.Sprintf(msgEditPrice, sess.EditRow+1, b.cfg.Calculator.CurrencySymbol)
	case session.StepRowAmount:
		text = fmt.Sprintf(msgEditAmount, sess.EditRow+1, sess.Sheet.Scale.AmountLabel(sess.Sheet.Unit))
	default:
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.createCancelKeyboard()
	b.sendMessage(msg)
}

func firstEmptyRow(s compare.Sheet) int {
	for i, r := range s.Rows {
		if r.IsEmpty() {
			return i
		}
	}
	return s.Len()
}
