package models

// MeetingView is a meeting as rendered by the admin and public pages.
type MeetingView struct {
	Meeting
	Label  string   `json:"data_label"`
	Alerts []string `json:"alertas,omitempty"`
}

// GroupWithMeetings pairs a group with its meetings.
type GroupWithMeetings struct {
	Group
	Meetings []MeetingView `json:"encontros"`
}

// EventWithMeetings pairs an event with its meetings and the display names of
// the groups it involves.
type EventWithMeetings struct {
	Event
	GroupNames []string      `json:"nomes_grupos"`
	Meetings   []MeetingView `json:"encontros"`
}

// CalendarMonth is one month of the annual calendar.
type CalendarMonth struct {
	Month    int           `json:"mes"`
	Name     string        `json:"nome"`
	Meetings []MeetingView `json:"encontros"`
}

// BookIndexPage is the public book cover and table of contents.
type BookIndexPage struct {
	Groups []Group `json:"grupos"`
	Events []Event `json:"eventos"`
}

// CalendarPage is the public annual calendar.
type CalendarPage struct {
	Groups []Group         `json:"grupos"`
	Events []Event         `json:"eventos"`
	Months []CalendarMonth `json:"meses"`
}

// GroupPage is a group's public chapter.
type GroupPage struct {
	Group    Group         `json:"grupo"`
	Groups   []Group       `json:"grupos"`
	Meetings []MeetingView `json:"encontros"`
}

// EventPage is an event's public page.
type EventPage struct {
	Event EventWithMeetings `json:"evento"`
}

// OrderItem is one entry of a bulk reorder request.
type OrderItem struct {
	ID    string `json:"id"`
	Order int    `json:"ordem"`
}

// ReorderRequest carries a drag-and-drop result.
type ReorderRequest struct {
	Items []OrderItem `json:"ordem"`
}

// MoveRequest asks for a one-step move. grupoId and direcao are accepted as
// aliases.
type MoveRequest struct {
	ID        string `json:"id"`
	GroupID   string `json:"grupoId"`
	Direction string `json:"direction"`
	Direcao   string `json:"direcao"`
}
