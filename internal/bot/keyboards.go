package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply keyboard buttons.
const (
	btnMeeting     = "📋 Meeting"
	btnReport      = "📊 Report"
	btnExportYear  = "📥 Export year"
	btnExportMonth = "🗓 Export month"
	btnReports     = "📑 All reports"
	btnImport      = "📤 Import"
)

// Meeting card callbacks.
const (
	cbEdit   = "mt:edit"
	cbDate   = "mt:date"
	cbSave   = "mt:save"
	cbCancel = "mt:cancel"
	cbCount  = "mt:cnt:" // mt:cnt:<d|h>:<+|->
)

func replyKeyboard(admin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		{tgbotapi.NewKeyboardButton(btnMeeting)},
		{tgbotapi.NewKeyboardButton(btnReport), tgbotapi.NewKeyboardButton(btnReports)},
		{tgbotapi.NewKeyboardButton(btnExportYear), tgbotapi.NewKeyboardButton(btnExportMonth)},
	}
	if admin {
		rows = append(rows, []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(btnImport)})
	}
	return tgbotapi.ReplyKeyboardMarkup{ResizeKeyboard: true, Keyboard: rows}
}

func meetingKeyboard(editing bool) tgbotapi.InlineKeyboardMarkup {
	if !editing {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", cbEdit),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("D −", cbCount+"d:-"),
			tgbotapi.NewInlineKeyboardButtonData("D +", cbCount+"d:+"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("H −", cbCount+"h:-"),
			tgbotapi.NewInlineKeyboardButtonData("H +", cbCount+"h:+"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Date", cbDate),
			tgbotapi.NewInlineKeyboardButtonData("💾 Save", cbSave),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", cbCancel),
		),
	)
}

func navKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", cbCancel),
		),
	)
}
