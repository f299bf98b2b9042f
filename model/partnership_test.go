package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnershipUnmarshal(t *testing.T) {
	data := `{
		"_id": "64f1",
		"name": "Nairobi Exchange",
		"type": "MOU",
		"status": null,
		"createdAt": "2026-03-05T10:20:30.123Z",
		"endDate": "2027-06-01",
		"signedDate": "not a date",
		"partnerInstitution": {"name": "UoN", "country": null},
		"aauContact": {"interestedCollegeOrDepartment": "  College of Health Sciences "}
	}`

	var p Partnership
	require.NoError(t, json.Unmarshal([]byte(data), &p))

	assert.Equal(t, "64f1", p.ID)
	assert.Equal(t, AgreementMOU, p.Type)
	assert.Equal(t, "", p.Status)
	require.NotNil(t, p.CreatedAt)
	assert.Equal(t, time.March, p.CreatedAt.Month())
	require.NotNil(t, p.ExpirationDate, "endDate is used when expirationDate is absent")
	assert.True(t, time.Date(2027, time.June, 1, 0, 0, 0, 0, time.UTC).Equal(*p.ExpirationDate))
	assert.Nil(t, p.SignedDate)
	assert.Equal(t, "", p.PartnerInstitution.Country)
	assert.Equal(t, "College of Health Sciences", p.InterestedCollege())
	assert.Equal(t, Contact{}, p.PartnerContactPerson)
}

func TestPartnershipPrefersIDAndExpirationDate(t *testing.T) {
	var p Partnership
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","_id":"b","expirationDate":"2028-01-01","endDate":"2027-01-01"}`), &p))

	assert.Equal(t, "a", p.ID)
	assert.Equal(t, 2028, p.ExpirationDate.Year())
}

func TestFlexTime(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{`"2026-10-14T08:00:00Z"`, ptrTime(time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC))},
		{`"2026-10-14T08:00:00"`, ptrTime(time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC))},
		{`"2026-10-14"`, ptrTime(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC))},
		{`1791964800000`, ptrTime(time.UnixMilli(1791964800000).UTC())},
		{`""`, nil},
		{`null`, nil},
		{`"garbage"`, nil},
		{`true`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var ft FlexTime
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ft))
			got := ft.Ptr()
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v", got)
		})
	}
}

func TestUserHasRole(t *testing.T) {
	u := User{Roles: []string{RoleEditor}}
	assert.True(t, u.HasRole(RoleEditor))
	assert.False(t, u.HasRole(RoleAdmin))
}

func ptrTime(t time.Time) *time.Time { return &t }
