package models

// LegalUnitPeriod is one normalized snapshot of a legal unit.
// LastName and UsageName are only filled when personal data is included.
type LegalUnitPeriod struct {
	SIREN           string        `json:"siren"`
	StartDate       *Date         `json:"start_date"`
	EndDate         *Date         `json:"end_date"`
	Current         bool          `json:"is_current"`
	Status          CompanyStatus `json:"status"`
	StatusChanged   bool          `json:"status_changed"`
	Name            *string       `json:"name"`
	UsualNames      []string      `json:"usual_names"`
	LastName        *string       `json:"last_name,omitempty"`
	UsageName       *string       `json:"usage_name,omitempty"`
	LegalForm       *string       `json:"legal_form"`
	ActivityCode    *string       `json:"activity_code"`
	ActivityScheme  *string       `json:"activity_scheme"`
	HeadquartersNIC *string       `json:"headquarters_nic"`
	SocialEconomy   *bool         `json:"social_economy"`
	MissionCompany  *bool         `json:"mission_company"`
	Employer        *bool         `json:"employer"`
}

// EstablishmentPeriod is one normalized snapshot of an establishment.
type EstablishmentPeriod struct {
	SIRET          string         `json:"siret"`
	StartDate      *Date          `json:"start_date"`
	EndDate        *Date          `json:"end_date"`
	Current        bool           `json:"is_current"`
	Status         FacilityStatus `json:"status"`
	StatusChanged  bool           `json:"status_changed"`
	TradeName      *string        `json:"trade_name"`
	Signage        []string       `json:"signage"`
	ActivityCode   *string        `json:"activity_code"`
	ActivityScheme *string        `json:"activity_scheme"`
	Employer       *bool          `json:"employer"`
}
