package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pricecompare-bot/internal/compare"
)

// BOT KEYBOARDS

const (
	cbUnitWeight  = "unit:weight"
	cbUnitVolume  = "unit:volume"
	cbScaleToggle = "scale:toggle"
	cbRowAdd      = "row:add"
	cbRowRemove   = "row:remove"
	cbRowsClear   = "rows:clear"
	cbExport      = "export"
	cbEditPrefix  = "edit:"

	editButtonsPerRow = 4
)

func (b *Bot) createSheetKeyboard(s compare.Sheet) tgbotapi.InlineKeyboardMarkup {
	weight, volume := "Peso", "Volume"
	if s.Unit == compare.Weight {
		weight = "● " + weight
	} else {
		volume = "● " + volume
	}

	next := s.Scale.Toggle()
	scaleLabel := fmt.Sprintf("Quantidade em %s", next.AmountLabel(s.Unit))

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(weight, cbUnitWeight),
			tgbotapi.NewInlineKeyboardButtonData(volume, cbUnitVolume),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(scaleLabel, cbScaleToggle),
		),
	}

	var edit []tgbotapi.InlineKeyboardButton
	for i := range s.Rows {
		edit = append(edit, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("✏️ %d", i+1),
			fmt.Sprintf("%s%d", cbEditPrefix, i+1),
		))
		if len(edit) == editButtonsPerRow {
			rows = append(rows, edit)
			edit = nil
		}
	}
	if len(edit) > 0 {
		rows = append(rows, edit)
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Adicionar linha", cbRowAdd),
			tgbotapi.NewInlineKeyboardButtonData("➖ Remover linha", cbRowRemove),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧹 Limpar", cbRowsClear),
			tgbotapi.NewInlineKeyboardButtonData("📤 Excel", cbExport),
		),
	)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) createCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(cancelText),
		),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}
