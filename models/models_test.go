package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestParentFromColumns(t *testing.T) {
	tests := []struct {
		name    string
		group   *string
		event   *string
		want    MeetingParent
		wantErr error
	}{
		{"group only", strp("jovens"), nil, GroupParent("jovens"), nil},
		{"event only", nil, strp("e1"), EventParent("e1"), nil},
		{"both", strp("jovens"), strp("e1"), MeetingParent{}, ErrParentBoth},
		{"neither", nil, nil, MeetingParent{}, ErrParentMissing},
		{"blank counts as null", strp("  "), strp("e1"), EventParent("e1"), nil},
		{"both blank", strp(""), strp(" "), MeetingParent{}, ErrParentMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParentFromColumns(tt.group, tt.event)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMeetingSetParent(t *testing.T) {
	m := Meeting{GroupID: strp("jovens")}

	m.SetParent(EventParent("e1"))
	assert.Nil(t, m.GroupID)
	require.NotNil(t, m.EventID)
	assert.Equal(t, "e1", *m.EventID)

	p, err := m.Parent()
	require.NoError(t, err)
	assert.True(t, p.IsEvent())
	assert.Equal(t, "e1", p.ID())
}

func TestStringListUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want StringList
	}{
		{`["Ana", " Bia "]`, StringList{"Ana", "Bia"}},
		{`"Ana, Bia,, Caio"`, StringList{"Ana", "Bia", "Caio"}},
		{`null`, StringList{}},
		{`""`, StringList{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got StringList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNullableTracksPresence(t *testing.T) {
	var req MeetingUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m1","grupo_id":null,"evento_id":"e1"}`), &req))

	assert.True(t, req.GroupID.Set)
	assert.Nil(t, req.GroupID.Value)
	assert.True(t, req.EventID.Set)
	require.NotNil(t, req.EventID.Value)
	assert.Equal(t, "e1", *req.EventID.Value)
	assert.False(t, req.EndDate.Set)
}

func TestEventInvolves(t *testing.T) {
	e := Event{GroupIDs: StringList{"jovens"}}
	assert.True(t, e.Involves("jovens"))
	assert.False(t, e.Involves("adultos"))

	e.AllGroups = true
	assert.True(t, e.Involves("adultos"))
}

func TestIDRequestTarget(t *testing.T) {
	assert.Equal(t, "a", IDRequest{ID: " a "}.Target())
	assert.Equal(t, "", IDRequest{}.Target())

	assert.Equal(t, "a", GroupIDRequest{IDRequest: IDRequest{ID: "a"}, GroupID: "b"}.Target())
	assert.Equal(t, "b", GroupIDRequest{GroupID: " b "}.Target())

	var req IDRequest
	require.NoError(t, json.Unmarshal([]byte(`{"grupoId":"x"}`), &req))
	assert.Equal(t, "", req.Target(), "grupoId is only an alias for groups")
}
