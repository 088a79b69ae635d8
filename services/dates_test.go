package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"livro/models"
)

func strp(s string) *string { return &s }

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "10/05/2026", FormatDate("2026-05-10"))
	assert.Equal(t, "01/12/2025", FormatDate("2025-12-01"))
	assert.Equal(t, "amanhã", FormatDate(" amanhã "))
}

func TestFormatDateRange(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   *string
		want  string
	}{
		{"single day", "2026-05-10", nil, "10/05/2026"},
		{"same month", "2026-05-10", strp("2026-05-12"), "10–12/05/2026"},
		{"month boundary", "2026-05-30", strp("2026-06-02"), "30/05 a 2/06/2026"},
		{"year boundary", "2025-12-30", strp("2026-01-02"), "30/12/2025 a 2/01/2026"},
		{"end equals start", "2026-05-10", strp("2026-05-10"), "10/05/2026"},
		{"blank end", "2026-05-10", strp(" "), "10/05/2026"},
		{"padded days trimmed in ranges", "2026-05-01", strp("2026-05-03"), "1–3/05/2026"},
		{"no start", "", strp("2026-05-12"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDateRange(tt.start, tt.end))
		})
	}
}

func TestMeetingLabel(t *testing.T) {
	tests := []struct {
		name    string
		meeting models.Meeting
		want    string
	}{
		{
			"readable override wins",
			models.Meeting{ReadableDate: "15–17 maio", StartDate: "2026-05-10", EndDate: strp("2026-05-12")},
			"15–17 maio",
		},
		{
			"range",
			models.Meeting{StartDate: "2026-05-10", EndDate: strp("2026-05-12")},
			"10–12/05/2026",
		},
		{
			"start only",
			models.Meeting{StartDate: "2026-05-10"},
			"10/05/2026",
		},
		{
			"no dates",
			models.Meeting{},
			DateToBeDefined,
		},
		{
			"blank override ignored",
			models.Meeting{ReadableDate: "  ", StartDate: "2026-05-10"},
			"10/05/2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeetingLabel(tt.meeting))
		})
	}
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, 5, MonthOf("2026-05-10"))
	assert.Equal(t, 12, MonthOf("2026-12-01"))
	assert.Equal(t, 0, MonthOf(""))
	assert.Equal(t, 0, MonthOf("2026-13-01"))
}
