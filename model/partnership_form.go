package model

// PartnershipForm is the edit form submitted for an existing partnership.
// Only the fields it validates are listed; the diff is computed on the raw body.
type PartnershipForm struct {
	Name                 string           `json:"name" validate:"omitempty,min=2"`
	Type                 string           `json:"type" validate:"omitempty,oneof=MOU MOA Agreement"`
	Status               string           `json:"status" validate:"omitempty,oneof=Active Rejected Pending"`
	Region               string           `json:"region"`
	Country              string           `json:"country"`
	PartnerInstitution   *InstitutionForm `json:"partnerInstitution" validate:"omitempty"`
	AAUContact           *ContactForm     `json:"aauContact" validate:"omitempty"`
	PartnerContactPerson *ContactForm     `json:"partnerContactPerson" validate:"omitempty"`
}

type InstitutionForm struct {
	Name    string `json:"name"`
	Website string `json:"website" validate:"omitempty,url"`
	Address string `json:"address"`
	Country string `json:"country"`
}

type ContactForm struct {
	Name                          string `json:"name"`
	Email                         string `json:"email" validate:"omitempty,email"`
	Phone                         string `json:"phone"`
	Title                         string `json:"title"`
	Address                       string `json:"address"`
	InterestedCollegeOrDepartment string `json:"interestedCollegeOrDepartment"`
}
