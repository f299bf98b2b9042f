package model

import (
	"encoding/json"
	"strings"
	"time"
)

// AgreementType is the kind of partnership agreement.
type AgreementType string

const (
	AgreementMOU       AgreementType = "MOU"
	AgreementMOA       AgreementType = "MOA"
	AgreementAgreement AgreementType = "Agreement"
)

// Partnership statuses as stored by the partnership API.
const (
	StatusActive   = "Active"
	StatusRejected = "Rejected"
	StatusPending  = "Pending"
)

// Institution is the partner institution of an agreement.
type Institution struct {
	Name    string `json:"name"`
	Website string `json:"website"`
	Address string `json:"address"`
	Country string `json:"country"`
}

// Contact is a person attached to a partnership, on either side.
type Contact struct {
	Name                          string `json:"name"`
	Email                         string `json:"email"`
	Phone                         string `json:"phone"`
	Title                         string `json:"title"`
	Address                       string `json:"address"`
	InterestedCollegeOrDepartment string `json:"interestedCollegeOrDepartment,omitempty"`
}

// Partnership is an immutable snapshot of one partnership record.
//
// Nullable wire fields are resolved when decoding: missing strings become "",
// missing nested objects become zero values and missing or unparseable dates
// become nil.
type Partnership struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Type                 AgreementType `json:"type"`
	Status               string        `json:"status"`
	SignedDate           *time.Time    `json:"signedDate,omitempty"`
	ExpirationDate       *time.Time    `json:"expirationDate,omitempty"`
	CreatedAt            *time.Time    `json:"createdAt,omitempty"`
	PotentialStartDate   *time.Time    `json:"potentialStartDate,omitempty"`
	Region               string        `json:"region"`
	Country              string        `json:"country"`
	College              string        `json:"college"`
	PartnerInstitution   Institution   `json:"partnerInstitution"`
	AAUContact           Contact       `json:"aauContact"`
	PartnerContactPerson Contact       `json:"partnerContactPerson"`
}

// InterestedCollege is the college the record is grouped under on the dashboard.
func (p Partnership) InterestedCollege() string {
	return p.AAUContact.InterestedCollegeOrDepartment
}

// partnershipWire mirrors the JSON the partnership API sends.
type partnershipWire struct {
	ID                   string        `json:"id"`
	MongoID              string        `json:"_id"`
	Name                 *string       `json:"name"`
	Type                 *string       `json:"type"`
	Status               *string       `json:"status"`
	SignedDate           *FlexTime     `json:"signedDate"`
	EndDate              *FlexTime     `json:"endDate"`
	ExpirationDate       *FlexTime     `json:"expirationDate"`
	CreatedAt            *FlexTime     `json:"createdAt"`
	PotentialStartDate   *FlexTime     `json:"potentialStartDate"`
	Region               *string       `json:"region"`
	Country              *string       `json:"country"`
	College              *string       `json:"college"`
	PartnerInstitution   *institutionW `json:"partnerInstitution"`
	AAUContact           *contactW     `json:"aauContact"`
	PartnerContactPerson *contactW     `json:"partnerContactPerson"`
}

type institutionW struct {
	Name    *string `json:"name"`
	Website *string `json:"website"`
	Address *string `json:"address"`
	Country *string `json:"country"`
}

type contactW struct {
	Name                          *string `json:"name"`
	Email                         *string `json:"email"`
	Phone                         *string `json:"phone"`
	Title                         *string `json:"title"`
	Address                       *string `json:"address"`
	InterestedCollegeOrDepartment *string `json:"interestedCollegeOrDepartment"`
}

// UnmarshalJSON decodes the wire form and resolves every optional field.
func (p *Partnership) UnmarshalJSON(data []byte) error {
	var w partnershipWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id := w.ID
	if id == "" {
		id = w.MongoID
	}

	expiration := w.ExpirationDate.Ptr()
	if expiration == nil {
		expiration = w.EndDate.Ptr()
	}

	*p = Partnership{
		ID:                   id,
		Name:                 str(w.Name),
		Type:                 AgreementType(str(w.Type)),
		Status:               str(w.Status),
		SignedDate:           w.SignedDate.Ptr(),
		ExpirationDate:       expiration,
		CreatedAt:            w.CreatedAt.Ptr(),
		PotentialStartDate:   w.PotentialStartDate.Ptr(),
		Region:               str(w.Region),
		Country:              str(w.Country),
		College:              str(w.College),
		PartnerInstitution:   w.PartnerInstitution.resolve(),
		AAUContact:           w.AAUContact.resolve(),
		PartnerContactPerson: w.PartnerContactPerson.resolve(),
	}
	return nil
}

func (w *institutionW) resolve() Institution {
	if w == nil {
		return Institution{}
	}
	return Institution{
		Name:    str(w.Name),
		Website: str(w.Website),
		Address: str(w.Address),
		Country: str(w.Country),
	}
}

func (w *contactW) resolve() Contact {
	if w == nil {
		return Contact{}
	}
	return Contact{
		Name:                          str(w.Name),
		Email:                         str(w.Email),
		Phone:                         str(w.Phone),
		Title:                         str(w.Title),
		Address:                       str(w.Address),
		InterestedCollegeOrDepartment: strings.TrimSpace(str(w.InterestedCollegeOrDepartment)),
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PartnershipList is the envelope of GET /partnership.
type PartnershipList struct {
	Partnerships []Partnership `json:"partnerships"`
}

// FlexTime accepts the date shapes the partnership API emits: RFC3339 with
// or without fractional seconds, a bare YYYY-MM-DD date, "" and null.
type FlexTime struct {
	time.Time
}

var flexLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// epoch milliseconds
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return nil
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	for _, layout := range flexLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// unparseable dates resolve to "absent"
	t.Time = time.Time{}
	return nil
}

// Ptr returns nil for a nil or zero FlexTime.
func (t *FlexTime) Ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
