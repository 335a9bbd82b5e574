package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/reports"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	form     *template.Template
	table    *template.Template
	download *template.Template
}

func mustPages() *pages {
	parse := func(name string) *template.Template {
		return template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return &pages{
		form:     parse("form.html"),
		table:    parse("table.html"),
		download: parse("download.html"),
	}
}

// render buffers the page so a template error never leaves half a response.
func (h *handlers) render(w http.ResponseWriter, status int, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "page", data); err != nil {
		h.Log.Error("render template", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type page struct {
	Title    string
	Message  string
	Messages []string
}

/*** FORM ***/

type formData struct {
	page
	Meeting attendance.Meeting
	Date    string
	Deaf    int
	Hearing int
	Editing bool
}

func (d formData) Total() int { return d.Deaf + d.Hearing }

// applyOp handles the +/- buttons of the form. Counts never drop below zero.
func applyOp(deaf, hearing int, op string) (int, int) {
	switch op {
	case "d+":
		deaf++
	case "d-":
		deaf--
	case "h+":
		hearing++
	case "h-":
		hearing--
	}
	return max(0, deaf), max(0, hearing)
}

func formInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.PostFormValue(name))
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// GET /
func (h *handlers) formPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	data := formData{page: page{Title: "Attendance"}, Date: date, Editing: q.Get("edit") == "1"}

	m, rec, err := h.Attendance.Current(r.Context(), date)
	if err != nil {
		data.Meeting, _ = h.Attendance.Meeting("")
		data.Date = ""
		data.Message = h.pageError(err, "fetching attendance data")
		h.render(w, statusOf(err), h.pages.form, data)
		return
	}
	data.Meeting = m
	if rec != nil {
		data.Deaf, data.Hearing = rec.Deaf, rec.Hearing
	}
	h.render(w, http.StatusOK, h.pages.form, data)
}

// POST /
func (h *handlers) formSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	date := strings.TrimSpace(r.PostFormValue("date"))
	op := r.PostFormValue("op")
	data := formData{page: page{Title: "Attendance"}, Date: date, Editing: true}

	m, rec, err := h.Attendance.Current(r.Context(), date)
	if err != nil {
		data.Meeting, _ = h.Attendance.Meeting("")
		data.Message = h.pageError(err, "fetching attendance data")
		h.render(w, statusOf(err), h.pages.form, data)
		return
	}
	data.Meeting = m

	if op == "load" {
		if rec != nil {
			data.Deaf, data.Hearing = rec.Deaf, rec.Hearing
		}
		h.render(w, http.StatusOK, h.pages.form, data)
		return
	}

	deaf, err1 := formInt(r, "deaf")
	hearing, err2 := formInt(r, "hearing")
	if err1 != nil || err2 != nil {
		data.Message = "Counts must be whole numbers."
		h.render(w, http.StatusBadRequest, h.pages.form, data)
		return
	}

	if op != "" && op != "save" {
		data.Deaf, data.Hearing = applyOp(deaf, hearing, op)
		h.render(w, http.StatusOK, h.pages.form, data)
		return
	}

	data.Deaf, data.Hearing = deaf, hearing
	outcome, saved, err := h.Attendance.Save(r.Context(), attendance.SaveInput{Date: date, Deaf: deaf, Hearing: hearing})
	if err != nil {
		h.Metrics.Saves.WithLabelValues("error").Inc()
		data.Message = h.pageError(err, "saving attendance")
		h.render(w, statusOf(err), h.pages.form, data)
		return
	}
	h.Metrics.Saves.WithLabelValues(string(outcome)).Inc()

	data.Editing = false
	data.Deaf, data.Hearing = saved.Deaf, saved.Hearing
	data.Message = outcome.Message()
	h.render(w, http.StatusOK, h.pages.form, data)
}

// pageError logs backend failures and returns the text shown on the page.
func (h *handlers) pageError(err error, what string) string {
	if statusOf(err) == http.StatusInternalServerError {
		h.Log.Error(what, "err", err)
		return "Error " + what + "."
	}
	return err.Error()
}

/*** TABLE ***/

type rowView struct {
	Key     string
	Written string
	Deaf    int
	Hearing int
	Total   int
}

type section struct {
	Name      string
	Rows      []rowView
	Total     int
	DeafTotal int
	Summary   reports.Summary
}

type monthBlock struct {
	Label    string
	Sections []section
}

type tableData struct {
	page
	Blocks    []monthBlock
	Months    []string
	Years     []int
	SelMonth  string
	SelYear   string
	AllMonths []string
}

func rowsOf(rs []attendance.Record) []rowView {
	out := make([]rowView, 0, len(rs))
	for _, r := range rs {
		written := attendance.UnknownDate
		if d, err := attendance.ParseKey(r.DateKey); err == nil {
			written = attendance.Written(d)
		}
		out = append(out, rowView{Key: r.DateKey, Written: written, Deaf: r.Deaf, Hearing: r.Hearing, Total: r.Total})
	}
	return out
}

func buildBlocks(months []attendance.Month, computed []reports.Monthly) []monthBlock {
	byLabel := make(map[string]reports.Monthly, len(computed))
	for _, m := range computed {
		byLabel[m.MonthYear] = m
	}
	blocks := make([]monthBlock, 0, len(months))
	for _, m := range months {
		rep := byLabel[m.Label()]
		midTotal, wkTotal := m.Totals()
		midDeaf, wkDeaf := m.DeafTotals()
		blocks = append(blocks, monthBlock{
			Label: m.Label(),
			Sections: []section{
				{Name: "Midweek", Rows: rowsOf(m.Midweek), Total: midTotal, DeafTotal: midDeaf, Summary: rep.Midweek},
				{Name: "Weekend", Rows: rowsOf(m.Weekend), Total: wkTotal, DeafTotal: wkDeaf, Summary: rep.Weekend},
			},
		})
	}
	return blocks
}

func allMonthNames() []string {
	out := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, m.String())
	}
	return out
}

// GET /table?month=&year=
func (h *handlers) tablePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := tableData{
		page:      page{Title: "Attendance table", Message: q.Get("msg")},
		SelMonth:  q.Get("month"),
		SelYear:   q.Get("year"),
		AllMonths: allMonthNames(),
	}

	filter, err := attendance.ParseFilter(data.SelMonth, data.SelYear)
	if err != nil {
		data.Message = err.Error()
		h.render(w, http.StatusBadRequest, h.pages.table, data)
		return
	}
	records, err := h.Attendance.List(r.Context())
	if err != nil {
		data.Message = h.pageError(err, "fetching attendance data")
		h.render(w, http.StatusInternalServerError, h.pages.table, data)
		return
	}

	computed, msgs := h.syncReports(r.Context(), records)
	data.Messages = msgs
	data.Months, data.Years = attendance.Periods(records)
	data.Blocks = buildBlocks(attendance.GroupByMonth(filter.Apply(records)), computed)
	h.render(w, http.StatusOK, h.pages.table, data)
}

func tableRedirect(w http.ResponseWriter, r *http.Request, msg string) {
	v := url.Values{}
	if m := r.PostFormValue("month"); m != "" {
		v.Set("month", m)
	}
	if y := r.PostFormValue("year"); y != "" {
		v.Set("year", y)
	}
	if msg != "" {
		v.Set("msg", msg)
	}
	target := "/table"
	if len(v) > 0 {
		target += "?" + v.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// POST /table/{key}
func (h *handlers) tableUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	deaf, err1 := formInt(r, "deaf")
	hearing, err2 := formInt(r, "hearing")
	if err1 != nil || err2 != nil {
		tableRedirect(w, r, "Counts must be whole numbers.")
		return
	}
	if _, err := h.Attendance.Update(r.Context(), r.PathValue("key"), deaf, hearing); err != nil {
		tableRedirect(w, r, h.pageError(err, "updating attendance"))
		return
	}
	h.Metrics.Saves.WithLabelValues(string(attendance.Updated)).Inc()
	tableRedirect(w, r, attendance.Updated.Message())
}

// POST /table/{key}/delete
func (h *handlers) tableDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	err := h.Attendance.Delete(r.Context(), r.PathValue("key"))
	switch {
	case err == nil:
		tableRedirect(w, r, attendance.Deleted.Message())
	case errors.Is(err, attendance.ErrNotFound):
		tableRedirect(w, r, "Record not found.")
	default:
		tableRedirect(w, r, h.pageError(err, "deleting attendance"))
	}
}

/*** DOWNLOAD ***/

type downloadData struct {
	page
	Years     []int
	AllMonths []string
}

// GET /download
func (h *handlers) downloadPage(w http.ResponseWriter, r *http.Request) {
	data := downloadData{page: page{Title: "Download"}, AllMonths: allMonthNames()}
	records, err := h.Attendance.List(r.Context())
	if err != nil {
		data.Message = h.pageError(err, "fetching attendance data")
	} else {
		_, data.Years = attendance.Periods(records)
	}
	h.render(w, http.StatusOK, h.pages.download, data)
}
