package services

import (
	"sort"
	"strings"

	"livro/models"
)

// Alert texts, in the order MeetingAlerts checks them.
const (
	AlertMissingDate         = "Data ausente"
	AlertMissingReadableDate = "Data legível ausente"
	AlertMissingLocation     = "Local ausente"
	AlertMissingTime         = "Horário ausente"
	AlertNotPublished        = "Não publicado"
)

// SortMeetingsByStartDate drops meetings without a start date and returns the
// rest ordered by it. The input slice is left untouched and equal dates keep
// their relative order.
func SortMeetingsByStartDate(meetings []models.Meeting) []models.Meeting {
	out := make([]models.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if strings.TrimSpace(m.StartDate) != "" {
			out = append(out, m)
		}
	}
	// zero padded ISO dates sort correctly as strings
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate < out[j].StartDate
	})
	return out
}

// MeetingAlerts lists everything an editor still has to fill in or publish.
func MeetingAlerts(m models.Meeting) []string {
	var alerts []string
	if strings.TrimSpace(m.StartDate) == "" {
		alerts = append(alerts, AlertMissingDate)
	}
	if m.Kind == models.KindSpecial && strings.TrimSpace(m.ReadableDate) == "" {
		alerts = append(alerts, AlertMissingReadableDate)
	}
	if strings.TrimSpace(m.Location) == "" {
		alerts = append(alerts, AlertMissingLocation)
	}
	if strings.TrimSpace(m.Time) == "" {
		alerts = append(alerts, AlertMissingTime)
	}
	if m.Visibility == models.VisibilityInternal {
		alerts = append(alerts, AlertNotPublished)
	}
	return alerts
}

// PublicMeetings keeps the published meetings.
func PublicMeetings(meetings []models.Meeting) []models.Meeting {
	var out []models.Meeting
	for _, m := range meetings {
		if m.Visibility == models.VisibilityPublic {
			out = append(out, m)
		}
	}
	return out
}

// OnAnnualCalendar reports whether a meeting belongs on the annual calendar:
// it needs a start date, and event meetings additionally need the main level
// and the show flag.
func OnAnnualCalendar(m models.Meeting) bool {
	if strings.TrimSpace(m.StartDate) == "" {
		return false
	}
	if m.EventID == nil || *m.EventID == "" {
		return true
	}
	return m.Level == models.LevelMain && m.ShowInAnnual
}

// MeetingViews labels each meeting; withAlerts adds the editor alerts.
func MeetingViews(meetings []models.Meeting, withAlerts bool) []models.MeetingView {
	views := make([]models.MeetingView, 0, len(meetings))
	for _, m := range meetings {
		v := models.MeetingView{Meeting: m, Label: MeetingLabel(m)}
		if withAlerts {
			v.Alerts = MeetingAlerts(m)
		}
		views = append(views, v)
	}
	return views
}

// GroupByMonth splits sorted meetings into the twelve calendar months. Every
// month is present even when empty.
func GroupByMonth(meetings []models.Meeting) []models.CalendarMonth {
	months := make([]models.CalendarMonth, 12)
	for i := range months {
		months[i] = models.CalendarMonth{Month: i + 1, Name: MonthNames[i], Meetings: []models.MeetingView{}}
	}
	for _, m := range SortMeetingsByStartDate(meetings) {
		n := MonthOf(m.StartDate)
		if n == 0 {
			continue
		}
		months[n-1].Meetings = append(months[n-1].Meetings, models.MeetingView{Meeting: m, Label: MeetingLabel(m)})
	}
	return months
}
