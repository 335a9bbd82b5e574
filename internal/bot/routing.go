package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/attendance-bot/internal/dialog"
	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/users"
)

const helpText = `Commands:
/meeting — next meeting card
/report [Month YYYY] — monthly summary
/reports — all monthly reports (.xlsx)
/export [YYYY] — records of a year (.xlsx)
/export_month [Month YYYY] — weekly sheet of a month (.xlsx)
/export_range Month YYYY Month YYYY — records of a range (.xlsx)
/delete MM_DD_YYYY — delete a record (admin)
/import — load records from .xlsx (admin)`

func scheduleLine(s attendance.Schedule) string {
	return "Meetings: Midweek on " + s.Midweek.String() + ", Weekend on " + s.Weekend.String() + "."
}

func (b *Bot) help() string {
	return helpText + "\n\n" + scheduleLine(b.svc.Schedule())
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	tgID := msg.From.ID
	args := msg.CommandArguments()

	switch msg.Command() {
	case "start":
		role := users.RoleUsher
		if tgID == b.adminChat {
			role = users.RoleAdmin
		}
		u, err := b.users.UpsertFromTelegram(ctx, users.Telegram{
			ID:        tgID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		}, role)
		if err != nil {
			b.log.Error("register user", "tg_id", tgID, "err", err)
			b.sendText(chatID, "Error: could not save your profile.")
			return
		}
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Welcome! Press «"+btnMeeting+"» to record attendance.\n\n"+b.help())
		m.ReplyMarkup = replyKeyboard(u.IsAdmin())
		b.send(m)

	case "help":
		b.sendText(chatID, b.help())

	case "meeting":
		b.showMeeting(ctx, chatID, "")

	case "report":
		b.sendReport(ctx, chatID, args)

	case "reports":
		b.exportReports(ctx, chatID)

	case "export":
		b.exportYear(ctx, chatID, args)

	case "export_month":
		b.exportMonth(ctx, chatID, args)

	case "export_range":
		b.exportRange(ctx, chatID, args)

	case "delete":
		if !b.isAdmin(ctx, tgID) {
			b.sendText(chatID, "Access denied.")
			return
		}
		b.deleteRecord(ctx, chatID, args)

	case "import":
		if !b.isAdmin(ctx, tgID) {
			b.sendText(chatID, "Access denied.")
			return
		}
		b.askImport(ctx, chatID)

	default:
		b.sendText(chatID, "Unknown command. Type /help")
	}
}

func (b *Bot) deleteRecord(ctx context.Context, chatID int64, args string) {
	if strings.TrimSpace(args) == "" {
		b.sendText(chatID, "Usage: /delete 10_21_2026")
		return
	}
	err := b.svc.Delete(ctx, args)
	switch {
	case err == nil:
		b.log.Info("attendance deleted", "date", strings.TrimSpace(args), "chat_id", chatID)
		b.sendText(chatID, attendance.Deleted.Message())
	case errors.Is(err, attendance.ErrNotFound):
		b.sendText(chatID, "No record for "+strings.TrimSpace(args)+".")
	case errors.Is(err, attendance.ErrInvalidDate):
		b.sendText(chatID, "Usage: /delete 10_21_2026")
	default:
		b.log.Error("delete attendance", "err", err)
		b.sendText(chatID, "Error deleting the record.")
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	// Reply keyboard
	switch text {
	case btnMeeting:
		b.showMeeting(ctx, chatID, "")
		return
	case btnReport:
		b.sendReport(ctx, chatID, "")
		return
	case btnReports:
		b.exportReports(ctx, chatID)
		return
	case btnExportYear:
		b.exportYear(ctx, chatID, "")
		return
	case btnExportMonth:
		b.exportMonth(ctx, chatID, "")
		return
	case btnImport:
		if !b.isAdmin(ctx, msg.From.ID) {
			b.sendText(chatID, "Access denied.")
			return
		}
		b.askImport(ctx, chatID)
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state", "chat_id", chatID, "err", err)
		return
	}
	switch st.State {
	case dialog.StateEditCounts, dialog.StateEditDate:
		b.handleCardText(ctx, chatID, st, text)
	case dialog.StateImportFile:
		b.sendText(chatID, "Waiting for an .xlsx document.")
	default:
		b.sendText(chatID, "Type /help to see what I can do.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		b.answerCallback(cb, "", false)
		return
	}
	if strings.HasPrefix(cb.Data, "mt:") {
		b.handleMeetingCallback(ctx, cb)
		return
	}
	b.answerCallback(cb, "", false)
}
