package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/partner-hub/model"
)

func TestAggregateByCollege(t *testing.T) {
	records := []model.Partnership{
		record("Active", collegeNCS, "Kenya", daysAgo(1)),
		record("Rejected", collegeNCS, "Kenya", daysAgo(3)),
		record("Pending", collegeBE, "Ghana", daysAgo(5)),
		record("Pending", collegeBE, "Ghana", daysAgo(40)),
		record("Active", "", "Ghana", daysAgo(2)),
		record("Draft", collegeHS, "Ghana", daysAgo(2)),
	}
	summary := AggregateByCollege(Derive(records, fixedNow), Weekly, fixedNow)

	require.Len(t, summary.ByCollege, 9, "eight colleges plus the All Colleges sentinel")
	assert.Equal(t, StatusCounts{Active: 1, Expired: 1}, summary.ByCollege[collegeNCS])
	assert.Equal(t, StatusCounts{Prospect: 1}, summary.ByCollege[collegeBE])
	assert.Equal(t, StatusCounts{}, summary.ByCollege[collegeHS], "fallback statuses are not counted")
	assert.Equal(t, StatusCounts{Active: 2, Expired: 1, Prospect: 1}, summary.ByCollege[allColleges])
	assert.Equal(t, summary.ByCollege[allColleges], summary.Total)
}

func TestAggregateByCollegeAllTimes(t *testing.T) {
	records := []model.Partnership{
		record("Pending", collegeBE, "Ghana", daysAgo(5)),
		record("Pending", collegeBE, "Ghana", daysAgo(400)),
		record("Pending", collegeBE, "Ghana", nil),
	}
	summary := AggregateByCollege(Derive(records, fixedNow), AllTimes, fixedNow)

	assert.Equal(t, 2, summary.Total.Prospect)
	assert.Equal(t, 2, summary.ByCollege[collegeBE].Prospect)
}
