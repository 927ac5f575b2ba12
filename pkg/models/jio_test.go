package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTimeLayouts(t *testing.T) {
	want := time.Date(2030, 1, 1, 9, 0, 0, 0, time.Local)

	for _, in := range []string{
		"2030-01-01T09:00",
		"2030-01-01T09:00:00",
		"2030-01-01 09:00",
		" 2030-01-01 09:00:00 ",
	} {
		dt, err := ParseDateTime(in)
		require.NoError(t, err, in)
		assert.True(t, dt.Equal(want), in)
	}

	dt, err := ParseDateTime("2030-01-01T09:00:00+08:00")
	require.NoError(t, err)
	assert.True(t, dt.Equal(time.Date(2030, 1, 1, 1, 0, 0, 0, time.UTC)))

	_, err = ParseDateTime("01/01/2030")
	assert.Error(t, err)
}

func TestDateTimeUnmarshal(t *testing.T) {
	var req CreateJioRequest
	err := json.Unmarshal([]byte(`{"startDateTime":"2030-01-01T09:00","endDateTime":"2030-01-01T10:00Z"}`), &req)
	assert.Error(t, err, "10:00Z is not an accepted layout")

	err = json.Unmarshal([]byte(`{"startDateTime":"2030-01-01T09:00","endDateTime":"2030-01-01T10:00:00Z"}`), &req)
	require.NoError(t, err)
	require.NotNil(t, req.StartDateTime)
	assert.Equal(t, 9, req.StartDateTime.Hour())
	assert.Equal(t, time.UTC, req.EndDateTime.Location())

	assert.Error(t, json.Unmarshal([]byte(`{"startDateTime":42}`), &req))
}

func TestJioJSONIsBuy(t *testing.T) {
	tests := []struct {
		typ  JioType
		want string
	}{
		{JioTypeBuyer, `"isBuy":true`},
		{JioTypeSeller, `"isBuy":false`},
		{JioTypeOther, `"isBuy":null`},
	}
	for _, tt := range tests {
		raw, err := json.Marshal(Jio{ID: "j1", Type: tt.typ})
		require.NoError(t, err)
		assert.Contains(t, string(raw), tt.want, tt.typ)
		assert.Contains(t, string(raw), `"id":"j1"`)
		assert.NotContains(t, string(raw), `"gym"`)
	}
}

func TestJioTypeRules(t *testing.T) {
	assert.True(t, JioTypeBuyer.Valid())
	assert.False(t, JioType("trader").Valid())
	assert.True(t, JioTypeSeller.RequiresPrice())
	assert.False(t, JioTypeOther.RequiresPrice())
}

func TestToPatchMap(t *testing.T) {
	assert.Empty(t, PatchJioRequest{}.ToPatchMap())

	var req PatchJioRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "buyer",
		"numPasses": 3,
		"gymId": 2,
		"startDateTime": "2030-01-01T09:00",
		"optionalNote": "",
		"isClosed": false,
		"userId": "mallory"
	}`), &req))

	patch := req.ToPatchMap()
	assert.Equal(t, map[string]interface{}{
		"type":            "buyer",
		"num_passes":      3,
		"gym_id":          int64(2),
		"start_date_time": time.Date(2030, 1, 1, 9, 0, 0, 0, time.Local),
		"optional_note":   "",
		"is_closed":       false,
	}, patch)
}
