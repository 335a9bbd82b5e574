package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/attendance-bot/internal/dialog"
	"github.com/Spok95/attendance-bot/internal/domain/attendance"
)

const countsHint = "Use the buttons or type both counts, e.g. \"12 40\" (deaf, hearing)."

func meetingCardText(m attendance.Meeting, deaf, hearing int, editing bool) string {
	var sb strings.Builder
	sb.WriteString(m.Title())
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "D = %d\nH = %d\nTotal = %d", deaf, hearing, deaf+hearing)
	if editing {
		sb.WriteString("\n\n")
		sb.WriteString(countsHint)
	}
	return sb.String()
}

// draft is the unsaved card kept in the dialog payload.
type draft struct {
	date    string
	deaf    int
	hearing int
}

func draftFrom(p dialog.Payload) draft {
	var d draft
	d.date, _ = dialog.GetString(p, dialog.KeyDate)
	d.deaf, _ = dialog.GetInt(p, dialog.KeyDeaf)
	d.hearing, _ = dialog.GetInt(p, dialog.KeyHearing)
	return d
}

func (d draft) payload() dialog.Payload {
	return dialog.Payload{
		dialog.KeyDate:    d.date,
		dialog.KeyDeaf:    float64(d.deaf),
		dialog.KeyHearing: float64(d.hearing),
	}
}

// bump applies a +/- button press. Counts never go below zero.
func (d draft) bump(field string, delta int) draft {
	switch field {
	case dialog.KeyDeaf:
		d.deaf = max(0, d.deaf+delta)
	case dialog.KeyHearing:
		d.hearing = max(0, d.hearing+delta)
	}
	return d
}

// loadDraft reads the stored counts for the meeting resolved from override.
func (b *Bot) loadDraft(ctx context.Context, override string) (attendance.Meeting, draft, error) {
	m, rec, err := b.svc.Current(ctx, override)
	if err != nil {
		return m, draft{}, err
	}
	d := draft{date: override}
	if rec != nil {
		d.deaf, d.hearing = rec.Deaf, rec.Hearing
	}
	return m, d, nil
}

// showMeeting sends a fresh read-only card for the next meeting.
func (b *Bot) showMeeting(ctx context.Context, chatID int64, override string) {
	m, d, err := b.loadDraft(ctx, override)
	if err != nil {
		b.log.Error("load meeting", "chat_id", chatID, "err", err)
		b.sendText(chatID, "Could not load the meeting: "+err.Error())
		return
	}
	b.clearPrevStep(ctx, chatID)
	b.sendCard(ctx, chatID, dialog.StateIdle, m, d)
}

func (b *Bot) sendCard(ctx context.Context, chatID int64, st dialog.State, m attendance.Meeting, d draft) {
	editing := st == dialog.StateEditCounts
	out := tgbotapi.NewMessage(chatID, meetingCardText(m, d.deaf, d.hearing, editing))
	out.ReplyMarkup = meetingKeyboard(editing)
	sent, err := b.api.Send(out)
	if err != nil {
		b.log.Error("send card", "chat_id", chatID, "err", err)
		return
	}
	b.saveLastStep(ctx, chatID, st, d.payload(), sent.MessageID)
}

func (b *Bot) editCard(ctx context.Context, chatID int64, mid int, st dialog.State, m attendance.Meeting, d draft) {
	editing := st == dialog.StateEditCounts
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, mid,
		meetingCardText(m, d.deaf, d.hearing, editing), meetingKeyboard(editing)))
	b.saveLastStep(ctx, chatID, st, d.payload(), mid)
}

func (b *Bot) handleMeetingCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state", "chat_id", chatID, "err", err)
		b.answerCallback(cb, "Something went wrong, try again.", true)
		return
	}
	d := draftFrom(st.Payload)

	switch data := cb.Data; {
	case data == cbEdit:
		m, fresh, err := b.loadDraft(ctx, d.date)
		if err != nil {
			b.answerCallback(cb, err.Error(), true)
			return
		}
		b.editCard(ctx, chatID, mid, dialog.StateEditCounts, m, fresh)
		b.answerCallback(cb, "", false)

	case strings.HasPrefix(data, cbCount):
		if st.State != dialog.StateEditCounts {
			b.answerCallback(cb, "Press Edit first.", false)
			return
		}
		field, delta, ok := parseCountCallback(data)
		if !ok {
			b.answerCallback(cb, "", false)
			return
		}
		m, err := b.svc.Meeting(d.date)
		if err != nil {
			b.answerCallback(cb, err.Error(), true)
			return
		}
		b.editCard(ctx, chatID, mid, dialog.StateEditCounts, m, d.bump(field, delta))
		b.answerCallback(cb, "", false)

	case data == cbDate:
		p := d.payload()
		p[dialog.KeyLastMID] = float64(mid)
		_ = b.states.Set(ctx, chatID, dialog.StateEditDate, p)
		b.answerCallback(cb, "", false)
		b.sendText(chatID, "Type the meeting date as MM_DD_YYYY or \"October 21, 2026\".")

	case data == cbSave:
		if st.State != dialog.StateEditCounts {
			b.answerCallback(cb, "Nothing to save.", false)
			return
		}
		outcome, rec, err := b.svc.Save(ctx, attendance.SaveInput{Date: d.date, Deaf: d.deaf, Hearing: d.hearing})
		if err != nil {
			b.metrics.Saves.WithLabelValues("error").Inc()
			b.log.Error("save attendance", "chat_id", chatID, "err", err)
			b.answerCallback(cb, "Error: "+err.Error(), true)
			return
		}
		b.metrics.Saves.WithLabelValues(string(outcome)).Inc()
		b.log.Info("attendance saved", "date", rec.DateKey, "outcome", outcome, "by", cb.From.ID)
		m, _ := b.svc.Meeting(d.date)
		b.editCard(ctx, chatID, mid, dialog.StateIdle, m, draft{date: d.date, deaf: rec.Deaf, hearing: rec.Hearing})
		b.answerCallback(cb, outcome.Message(), false)

	case data == cbCancel:
		if st.State == dialog.StateImportFile {
			_ = b.states.Reset(ctx, chatID)
			b.editTextAndClear(chatID, mid, "Import cancelled.")
			b.answerCallback(cb, "", false)
			return
		}
		m, stored, err := b.loadDraft(ctx, d.date)
		if err != nil {
			b.answerCallback(cb, err.Error(), true)
			return
		}
		b.editCard(ctx, chatID, mid, dialog.StateIdle, m, stored)
		b.answerCallback(cb, "Changes discarded.", false)

	default:
		b.answerCallback(cb, "", false)
	}
}

// handleCardText handles typed input while a card is being edited.
func (b *Bot) handleCardText(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	d := draftFrom(st.Payload)

	switch st.State {
	case dialog.StateEditCounts:
		deaf, hearing, err := parseCounts(text)
		if err != nil {
			b.sendText(chatID, countsHint)
			return
		}
		m, err := b.svc.Meeting(d.date)
		if err != nil {
			b.sendText(chatID, err.Error())
			return
		}
		d.deaf, d.hearing = deaf, hearing
		b.clearPrevStep(ctx, chatID)
		b.sendCard(ctx, chatID, dialog.StateEditCounts, m, d)

	case dialog.StateEditDate:
		key, err := attendance.NormalizeKey(text)
		if err != nil {
			if errors.Is(err, attendance.ErrInvalidDate) {
				b.sendText(chatID, "That is not a date I understand. Try 10_21_2026 or \"October 21, 2026\".")
				return
			}
			b.sendText(chatID, err.Error())
			return
		}
		m, fresh, err := b.loadDraft(ctx, key)
		if err != nil {
			b.sendText(chatID, "Could not load the meeting: "+err.Error())
			return
		}
		b.clearPrevStep(ctx, chatID)
		b.sendCard(ctx, chatID, dialog.StateEditCounts, m, fresh)
	}
}
