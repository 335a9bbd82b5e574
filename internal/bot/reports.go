package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/attendance-bot/internal/dialog"
	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/reports"
	"github.com/Spok95/attendance-bot/internal/export"
)

func formatSummary(name string, s reports.Summary) string {
	if s.Count == 0 {
		return name + ": no meetings"
	}
	return fmt.Sprintf("%s: %d meeting(s)\n  Overall %d, average %d\n  Deaf %d, average %d",
		name, s.Count, s.Total, s.Average, s.DeafTotal, s.DeafAverage)
}

func formatReport(m reports.Monthly) string {
	return strings.Join([]string{
		"📊 " + m.MonthYear,
		"",
		formatSummary("Midweek", m.Midweek),
		formatSummary("Weekend", m.Weekend),
	}, "\n")
}

// currentPeriod is the month and year of the next meeting.
func (b *Bot) currentPeriod() (time.Month, int) {
	m, _ := b.svc.Meeting("")
	return m.Date.Month(), m.Date.Year()
}

// syncReports recomputes every month and upserts the report table.
func (b *Bot) syncReports(ctx context.Context, records []attendance.Record) {
	results, err := b.syncer.Sync(ctx, reports.FromRecords(records))
	if err != nil {
		b.metrics.ReportSyncs.WithLabelValues("error").Inc()
		b.log.Error("sync reports", "err", err)
		return
	}
	for _, r := range results {
		b.metrics.ReportSyncs.WithLabelValues(string(r.Outcome)).Inc()
	}
}

func (b *Bot) sendReport(ctx context.Context, chatID int64, args string) {
	month, year := b.currentPeriod()
	if strings.TrimSpace(args) != "" {
		var err error
		month, year, err = attendance.ParseMonthYear(args)
		if err != nil {
			b.sendText(chatID, "Usage: /report October 2026")
			return
		}
	}

	records, err := b.svc.List(ctx)
	if err != nil {
		b.log.Error("list attendance", "err", err)
		b.sendText(chatID, "Error fetching attendance data.")
		return
	}
	b.syncReports(ctx, records)

	monthly := reports.FromRecords(attendance.Filter{Month: month, Year: year}.Apply(records))
	if len(monthly) == 0 {
		b.sendText(chatID, "No attendance recorded for "+attendance.MonthLabel(year, month)+".")
		return
	}
	b.sendText(chatID, formatReport(monthly[0]))
}

func (b *Bot) exportFailed(chatID int64, err error) {
	switch {
	case errors.Is(err, export.ErrNoData):
		b.sendText(chatID, "No attendance recorded for that period.")
	case errors.Is(err, export.ErrInvalidRange):
		b.sendText(chatID, "The start of the range must not be after its end.")
	default:
		b.log.Error("build workbook", "err", err)
		b.sendText(chatID, "Could not build the spreadsheet.")
	}
}

func (b *Bot) exportYear(ctx context.Context, chatID int64, args string) {
	_, year := b.currentPeriod()
	if s := strings.TrimSpace(args); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 {
			b.sendText(chatID, "Usage: /export 2026")
			return
		}
		year = y
	}
	from, to := export.YearRange(year).Bounds()
	records, err := b.svc.ListBetween(ctx, from, to)
	if err != nil {
		b.log.Error("list attendance", "err", err)
		b.sendText(chatID, "Error fetching attendance data.")
		return
	}
	wb, err := export.Year(records, year)
	if err != nil {
		b.exportFailed(chatID, err)
		return
	}
	b.sendWorkbook(chatID, wb, fmt.Sprintf("Attendance for %d", year), "year")
}

func (b *Bot) exportMonth(ctx context.Context, chatID int64, args string) {
	month, year := b.currentPeriod()
	if strings.TrimSpace(args) != "" {
		var err error
		month, year, err = attendance.ParseMonthYear(args)
		if err != nil {
			b.sendText(chatID, "Usage: /export_month October 2026")
			return
		}
	}
	from, to := export.MonthRange(year, month).Bounds()
	records, err := b.svc.ListBetween(ctx, from, to)
	if err != nil {
		b.log.Error("list attendance", "err", err)
		b.sendText(chatID, "Error fetching attendance data.")
		return
	}
	wb, err := export.MonthWorkbook(records, year, month)
	if err != nil {
		b.exportFailed(chatID, err)
		return
	}
	b.sendWorkbook(chatID, wb, "Weekly attendance for "+attendance.MonthLabel(year, month), "month")
}

// exportRange handles "/export_range January 2025 March 2026".
func (b *Bot) exportRange(ctx context.Context, chatID int64, args string) {
	f := strings.Fields(args)
	if len(f) != 4 {
		b.sendText(chatID, "Usage: /export_range January 2025 March 2026")
		return
	}
	rg, err := export.ParseRange(f[0], f[1], f[2], f[3])
	if err != nil {
		if errors.Is(err, export.ErrInvalidRange) {
			b.exportFailed(chatID, err)
			return
		}
		b.sendText(chatID, "Usage: /export_range January 2025 March 2026")
		return
	}
	from, to := rg.Bounds()
	records, err := b.svc.ListBetween(ctx, from, to)
	if err != nil {
		b.log.Error("list attendance", "err", err)
		b.sendText(chatID, "Error fetching attendance data.")
		return
	}
	wb, err := export.RangeWorkbook(records, rg)
	if err != nil {
		b.exportFailed(chatID, err)
		return
	}
	b.sendWorkbook(chatID, wb, "Attendance report", "range")
}

func (b *Bot) exportReports(ctx context.Context, chatID int64) {
	records, err := b.svc.List(ctx)
	if err != nil {
		b.log.Error("list attendance", "err", err)
		b.sendText(chatID, "Error fetching attendance data.")
		return
	}
	b.syncReports(ctx, records)
	wb, err := export.Reports(reports.FromRecords(records))
	if err != nil {
		b.exportFailed(chatID, err)
		return
	}
	b.sendWorkbook(chatID, wb, "Monthly attendance reports", "reports")
}

func (b *Bot) askImport(ctx context.Context, chatID int64) {
	b.clearPrevStep(ctx, chatID)
	m := tgbotapi.NewMessage(chatID,
		"Send an .xlsx file with the columns Date, Meeting Type, Deaf and Hearing (the /export layout works).")
	m.ReplyMarkup = navKeyboard()
	sent, err := b.api.Send(m)
	if err != nil {
		b.log.Error("send import prompt", "err", err)
		return
	}
	b.saveLastStep(ctx, chatID, dialog.StateImportFile, nil, sent.MessageID)
}

const maxRowErrors = 10

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state", "chat_id", chatID, "err", err)
		b.sendText(chatID, "Something went wrong, try again.")
		return
	}
	if st == nil || st.State != dialog.StateImportFile {
		b.sendText(chatID, "To import attendance, press «"+btnImport+"» first.")
		return
	}
	if !b.isAdmin(ctx, msg.From.ID) {
		b.sendText(chatID, "Access denied.")
		return
	}

	data, err := b.downloadTelegramFile(msg.Document.FileID)
	if err != nil {
		b.log.Error("download import", "err", err)
		b.sendText(chatID, "Could not download the file, try again.")
		return
	}
	records, rowErrs, err := export.ParseRecords(data)
	if err != nil {
		b.sendText(chatID, "Could not read the spreadsheet: "+err.Error())
		return
	}
	sum, err := b.svc.Import(ctx, records)
	if err != nil {
		b.log.Error("import attendance", "err", err)
		b.sendText(chatID, "Import stopped: "+err.Error())
		return
	}
	b.clearPrevStep(ctx, chatID)
	_ = b.states.Reset(ctx, chatID)

	b.sendText(chatID, importSummaryText(sum, rowErrs))
}

func importSummaryText(sum attendance.ImportSummary, rowErrs []export.RowError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Import finished.\nInserted: %d\nUpdated: %d\nUnchanged: %d",
		sum.Inserted, sum.Updated, sum.Unchanged)
	if len(rowErrs) > 0 {
		fmt.Fprintf(&sb, "\nSkipped rows: %d", len(rowErrs))
		for i, e := range rowErrs {
			if i == maxRowErrors {
				sb.WriteString("\n…")
				break
			}
			sb.WriteString("\n  " + e.Error())
		}
	}
	return sb.String()
}
