package dashboard

import (
	"time"

	"github.com/sahilchouksey/partner-hub/model"
)

const (
	collegeNCS  = "College of Natural and Computational Sciences"
	collegeBE   = "College of Business and Economics"
	collegeHS   = "College of Health Sciences"
	allColleges = "All Colleges"
)

var fixedNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func daysAgo(n int) *time.Time { return ptr(fixedNow.AddDate(0, 0, -n)) }

func monthsAgo(n int) *time.Time { return ptr(fixedNow.AddDate(0, -n, 0)) }

// record builds a partnership with the fields the pipeline reads.
func record(status, college, country string, created *time.Time) model.Partnership {
	return model.Partnership{
		ID:                 college + "/" + status + "/" + country,
		Status:             status,
		CreatedAt:          created,
		PartnerInstitution: model.Institution{Country: country},
		AAUContact:         model.Contact{InterestedCollegeOrDepartment: college},
	}
}
