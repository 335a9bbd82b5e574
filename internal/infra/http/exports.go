package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/export"
)

func (h *handlers) writeWorkbook(w http.ResponseWriter, wb export.Workbook, kind string) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", wb.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(wb.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wb.Data)
	h.Metrics.Exports.WithLabelValues(kind).Inc()
}

// param reads a path value, falling back to the query string so plain
// HTML forms can hit the same handler.
func param(r *http.Request, name string) string {
	if v := r.PathValue(name); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get(name))
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y < 1 {
		return 0, fmt.Errorf("%w: year %q", attendance.ErrInvalidDate, s)
	}
	return y, nil
}

// GET /export/reports
func (h *handlers) exportReports(w http.ResponseWriter, r *http.Request) {
	records, err := h.Attendance.List(r.Context())
	if err != nil {
		h.fail(w, err, "fetching attendance data")
		return
	}
	all, _ := h.syncReports(r.Context(), records)
	wb, err := export.Reports(all)
	if err != nil {
		h.fail(w, err, "building workbook")
		return
	}
	h.writeWorkbook(w, wb, "reports")
}

// GET /export/year/{year}
func (h *handlers) exportYear(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(param(r, "year"))
	if err != nil {
		h.fail(w, err, "parsing year")
		return
	}
	from, to := export.YearRange(year).Bounds()
	records, err := h.Attendance.ListBetween(r.Context(), from, to)
	if err != nil {
		h.fail(w, err, "fetching attendance data")
		return
	}
	wb, err := export.Year(records, year)
	if err != nil {
		h.fail(w, err, "building workbook")
		return
	}
	h.writeWorkbook(w, wb, "year")
}

// GET /export/range?start_month=&start_year=&end_month=&end_year=
func (h *handlers) exportRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rg, err := export.ParseRange(q.Get("start_month"), q.Get("start_year"), q.Get("end_month"), q.Get("end_year"))
	if err != nil {
		h.fail(w, err, "parsing range")
		return
	}
	from, to := rg.Bounds()
	records, err := h.Attendance.ListBetween(r.Context(), from, to)
	if err != nil {
		h.fail(w, err, "fetching attendance data")
		return
	}
	wb, err := export.RangeWorkbook(records, rg)
	if err != nil {
		h.fail(w, err, "building workbook")
		return
	}
	h.writeWorkbook(w, wb, "range")
}

// GET /export/month/{year}/{month}
func (h *handlers) exportMonth(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(param(r, "year"))
	if err != nil {
		h.fail(w, err, "parsing year")
		return
	}
	month, ok := attendance.ParseMonth(param(r, "month"))
	if !ok {
		h.fail(w, fmt.Errorf("%w: month %q", attendance.ErrInvalidDate, param(r, "month")), "parsing month")
		return
	}
	from, to := export.MonthRange(year, month).Bounds()
	records, err := h.Attendance.ListBetween(r.Context(), from, to)
	if err != nil {
		h.fail(w, err, "fetching attendance data")
		return
	}
	wb, err := export.MonthWorkbook(records, year, month)
	if err != nil {
		h.fail(w, err, "building workbook")
		return
	}
	h.writeWorkbook(w, wb, "month")
}
