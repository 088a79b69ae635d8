package services

import (
	"fmt"
	"strconv"
	"strings"

	"livro/models"
)

// DateToBeDefined is shown for meetings without any date.
const DateToBeDefined = "Data a definir"

// MonthNames are the calendar month headings, January first.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

type isoDate struct {
	year, month, day string
}

// parseISODate splits YYYY-MM-DD without validating the calendar.
func parseISODate(s string) (isoDate, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return isoDate{}, false
	}
	return isoDate{year: parts[0], month: parts[1], day: parts[2]}, true
}

// dayNumber drops the zero padding of a day ("02" -> "2").
func dayNumber(day string) string {
	if n, err := strconv.Atoi(day); err == nil {
		return strconv.Itoa(n)
	}
	return day
}

// FormatDate renders YYYY-MM-DD as dd/mm/yyyy. Unparseable input is returned as is.
func FormatDate(s string) string {
	d, ok := parseISODate(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%s/%s/%s", d.day, d.month, d.year)
}

// FormatDateRange renders a start date and optional end date:
//
//	2026-05-10              -> 10/05/2026
//	2026-05-10 - 2026-05-12 -> 10–12/05/2026
//	2026-05-30 - 2026-06-02 -> 30/05 a 2/06/2026
//	2025-12-30 - 2026-01-02 -> 30/12/2025 a 2/01/2026
func FormatDateRange(start string, end *string) string {
	if strings.TrimSpace(start) == "" {
		return ""
	}
	if end == nil || strings.TrimSpace(*end) == "" || strings.TrimSpace(*end) == strings.TrimSpace(start) {
		return FormatDate(start)
	}

	s, okStart := parseISODate(start)
	e, okEnd := parseISODate(*end)
	if !okStart || !okEnd {
		return FormatDate(start)
	}

	switch {
	case s.year != e.year:
		return fmt.Sprintf("%s/%s/%s a %s/%s/%s", dayNumber(s.day), s.month, s.year, dayNumber(e.day), e.month, e.year)
	case s.month != e.month:
		return fmt.Sprintf("%s/%s a %s/%s/%s", dayNumber(s.day), s.month, dayNumber(e.day), e.month, s.year)
	default:
		return fmt.Sprintf("%s–%s/%s/%s", dayNumber(s.day), dayNumber(e.day), s.month, s.year)
	}
}

// MeetingLabel is the canonical date text of a meeting: the readable override,
// then the start–end range, then the start date, then DateToBeDefined.
func MeetingLabel(m models.Meeting) string {
	if label := strings.TrimSpace(m.ReadableDate); label != "" {
		return m.ReadableDate
	}
	if strings.TrimSpace(m.StartDate) != "" && m.EndDate != nil && strings.TrimSpace(*m.EndDate) != "" {
		return FormatDateRange(m.StartDate, m.EndDate)
	}
	if strings.TrimSpace(m.StartDate) != "" {
		return FormatDate(m.StartDate)
	}
	return DateToBeDefined
}

// MonthOf returns the 1-based month of an ISO date, or 0.
func MonthOf(date string) int {
	d, ok := parseISODate(date)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(d.month)
	if err != nil || n < 1 || n > 12 {
		return 0
	}
	return n
}
