package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/attendance-bot/internal/dialog"
	"github.com/Spok95/attendance-bot/internal/export"
)

/*** HELPERS ***/

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Error("answer callback", "err", err)
	}
}

// clearPrevStep removes inline buttons from the last card, if any.
func (b *Bot) clearPrevStep(ctx context.Context, chatID int64) {
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state", "chat_id", chatID, "err", err)
		return
	}
	if st == nil {
		return
	}
	if mid, ok := dialog.GetInt(st.Payload, dialog.KeyLastMID); ok && mid > 0 {
		rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, mid, rm))
	}
}

// saveLastStep remembers the card message id along with the next state.
func (b *Bot) saveLastStep(ctx context.Context, chatID int64, next dialog.State, payload dialog.Payload, newMID int) {
	if payload == nil {
		payload = dialog.Payload{}
	}
	payload[dialog.KeyLastMID] = float64(newMID)
	if err := b.states.Set(ctx, chatID, next, payload); err != nil {
		b.log.Error("save dialog state", "chat_id", chatID, "err", err)
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// downloadTelegramFile fetches a document by FileID.
func (b *Bot) downloadTelegramFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram returned status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

func (b *Bot) sendWorkbook(chatID int64, wb export.Workbook, caption, kind string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  wb.Name,
		Bytes: wb.Data,
	})
	doc.Caption = caption
	b.send(doc)
	b.metrics.Exports.WithLabelValues(kind).Inc()
}

// parseCounts reads "12 40" (also "12/40" or "12,40") as deaf and hearing.
func parseCounts(s string) (deaf, hearing int, err error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '/' || r == ',' || r == ';' || r == '\t'
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected two numbers, got %q", s)
	}
	deaf, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("deaf: %w", err)
	}
	hearing, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("hearing: %w", err)
	}
	if deaf < 0 || hearing < 0 {
		return 0, 0, fmt.Errorf("counts must be non-negative")
	}
	return deaf, hearing, nil
}

// parseCountCallback decodes mt:cnt:<d|h>:<+|->.
func parseCountCallback(data string) (field string, delta int, ok bool) {
	rest, found := strings.CutPrefix(data, cbCount)
	if !found {
		return "", 0, false
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 2 {
		return "", 0, false
	}
	switch parts[0] {
	case "d":
		field = dialog.KeyDeaf
	case "h":
		field = dialog.KeyHearing
	default:
		return "", 0, false
	}
	switch parts[1] {
	case "+":
		delta = 1
	case "-":
		delta = -1
	default:
		return "", 0, false
	}
	return field, delta, true
}
