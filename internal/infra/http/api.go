package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/reports"
	"github.com/Spok95/attendance-bot/internal/export"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// strictDecode rejects unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type messageBody struct {
	Message string `json:"message"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, attendance.ErrNotFound), errors.Is(err, export.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, attendance.ErrNegativeCount),
		errors.Is(err, attendance.ErrInvalidMeetingType),
		errors.Is(err, export.ErrInvalidRange):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail maps domain errors to statuses. Backend failures are logged and
// answered with a generic message.
func (h *handlers) fail(w http.ResponseWriter, err error, what string) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.Log.Error(what, "err", err)
		writeJSON(w, status, messageBody{Message: "Error " + what + "."})
		return
	}
	writeJSON(w, status, messageBody{Message: err.Error()})
}

type meetingView struct {
	Type    attendance.MeetingType `json:"meeting_type"`
	DateKey string                 `json:"date_mm_dd_yyyy"`
	Title   string                 `json:"title"`
}

func viewOf(m attendance.Meeting) meetingView {
	return meetingView{Type: m.Type, DateKey: m.Key(), Title: m.Title()}
}

type meetingResponse struct {
	Meeting meetingView        `json:"meeting"`
	Record  *attendance.Record `json:"record"`
	Outcome attendance.Outcome `json:"outcome,omitempty"`
	Message string             `json:"message,omitempty"`
}

// GET /api/meeting?date=
func (h *handlers) getMeeting(w http.ResponseWriter, r *http.Request) {
	m, rec, err := h.Attendance.Current(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, err, "fetching attendance data")
		return
	}
	writeJSON(w, http.StatusOK, meetingResponse{Meeting: viewOf(m), Record: rec})
}

type saveRequest struct {
	Date    string `json:"date"`
	Deaf    *int   `json:"deaf"`
	Hearing *int   `json:"hearing"`
}

// PUT /api/meeting
func (h *handlers) saveMeeting(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := strictDecode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageBody{Message: "invalid JSON body"})
		return
	}
	if req.Deaf == nil || req.Hearing == nil {
		writeJSON(w, http.StatusBadRequest, messageBody{Message: "deaf and hearing are required"})
		return
	}

	outcome, rec, err := h.Attendance.Save(r.Context(), attendance.SaveInput{
		Date: req.Date, Deaf: *req.Deaf, Hearing: *req.Hearing,
	})
	if err != nil {
		h.Metrics.Saves.WithLabelValues("error").Inc()
		h.fail(w, err, "saving attendance")
		return
	}
	h.Metrics.Saves.WithLabelValues(string(outcome)).Inc()

	m, _ := h.Attendance.Meeting(req.Date)
	writeJSON(w, http.StatusOK, meetingResponse{
		Meeting: viewOf(m),
		Record:  &rec,
		Outcome: outcome,
		Message: outcome.Message(),
	})
}

type attendanceResponse struct {
	Records []attendance.Record `json:"records"`
	Months  []string            `json:"months"`
	Years   []int               `json:"years"`
}

// GET /api/attendance?month=&year=
func (h *handlers) listAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := attendance.ParseFilter(q.Get("month"), q.Get("year"))
	if err != nil {
		h.fail(w, err, "filtering attendance")
		return
	}
	records, err := h.Attendance.List(r.Context())
	if err != nil {
		h.fail(w, err, "fetching attendance data")
		return
	}
	months, years := attendance.Periods(records)
	writeJSON(w, http.StatusOK, attendanceResponse{
		Records: filter.Apply(records),
		Months:  months,
		Years:   years,
	})
}

type countsRequest struct {
	Deaf    *int `json:"deaf"`
	Hearing *int `json:"hearing"`
}

type recordResponse struct {
	Record  attendance.Record `json:"record"`
	Message string            `json:"message"`
}

// PATCH /api/attendance/{key}
func (h *handlers) updateAttendance(w http.ResponseWriter, r *http.Request) {
	var req countsRequest
	if err := strictDecode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageBody{Message: "invalid JSON body"})
		return
	}
	if req.Deaf == nil || req.Hearing == nil {
		writeJSON(w, http.StatusBadRequest, messageBody{Message: "deaf and hearing are required"})
		return
	}
	rec, err := h.Attendance.Update(r.Context(), r.PathValue("key"), *req.Deaf, *req.Hearing)
	if err != nil {
		h.fail(w, err, "updating attendance")
		return
	}
	h.Metrics.Saves.WithLabelValues(string(attendance.Updated)).Inc()
	writeJSON(w, http.StatusOK, recordResponse{Record: rec, Message: attendance.Updated.Message()})
}

// DELETE /api/attendance/{key}
func (h *handlers) deleteAttendance(w http.ResponseWriter, r *http.Request) {
	if err := h.Attendance.Delete(r.Context(), r.PathValue("key")); err != nil {
		h.fail(w, err, "deleting attendance")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: attendance.Deleted.Message()})
}

type reportsResponse struct {
	Reports  []reports.Monthly `json:"reports"`
	Messages []string          `json:"messages"`
}

// syncReports recomputes every month from records and upserts the report
// table, returning one log line per month.
func (h *handlers) syncReports(ctx context.Context, records []attendance.Record) ([]reports.Monthly, []string) {
	computed := reports.FromRecords(records)
	results, err := h.Reports.Sync(ctx, computed)
	if err != nil {
		h.Metrics.ReportSyncs.WithLabelValues("error").Inc()
		h.Log.Error("sync reports", "err", err)
		return computed, []string{"Error fetching reports."}
	}
	msgs := make([]string, 0, len(results))
	for _, res := range results {
		h.Metrics.ReportSyncs.WithLabelValues(string(res.Outcome)).Inc()
		msgs = append(msgs, res.Message())
	}
	return computed, msgs
}

func filterReports(all []reports.Monthly, f attendance.Filter) []reports.Monthly {
	out := make([]reports.Monthly, 0, len(all))
	for _, m := range all {
		if f.Month != 0 && m.Month != f.Month {
			continue
		}
		if f.Year != 0 && m.Year != f.Year {
			continue
		}
		out = append(out, m)
	}
	return out
}

// GET /api/reports?month=&year=
func (h *handlers) listReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := attendance.ParseFilter(q.Get("month"), q.Get("year"))
	if err != nil {
		h.fail(w, err, "filtering reports")
		return
	}
	records, err := h.Attendance.List(r.Context())
	if err != nil {
		h.fail(w, err, "fetching attendance data")
		return
	}
	all, msgs := h.syncReports(r.Context(), records)
	writeJSON(w, http.StatusOK, reportsResponse{Reports: filterReports(all, filter), Messages: msgs})
}
