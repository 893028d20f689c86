package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityClassification is a (scheme, code) pair, unique per run by Key.
type ActivityClassification struct {
	Key    string  `json:"key"`
	Scheme string  `json:"scheme"`
	Code   string  `json:"code"`
	Label  *string `json:"label"`
}

// OwnershipRole is the part a facility plays for its company.
type OwnershipRole string

const (
	RoleHeadquarters OwnershipRole = "headquarters"
	RoleBranch       OwnershipRole = "branch"
)

// FacilityOwnership links a company to one of its facilities.
type FacilityOwnership struct {
	CompanySIREN  string        `json:"company_siren"`
	FacilitySIRET string        `json:"facility_siret"`
	Role          OwnershipRole `json:"role"`
	ValidFrom     Date          `json:"valid_from"`
	ValidTo       *Date         `json:"valid_to"`
}

// Registry record types.
const (
	RecordLegalUnit     = "legal_unit"
	RecordEstablishment = "establishment"
)

// RegistryRecord is the audit trail entry for one raw registry record.
type RegistryRecord struct {
	ID              uuid.UUID       `json:"id"`
	Source          string          `json:"source"`
	RecordType      string          `json:"record_type"`
	SourceID        string          `json:"source_id"`
	Payload         json.RawMessage `json:"payload"`
	ContentHash     string          `json:"content_hash"`
	SourceUpdatedAt time.Time       `json:"source_updated_at"`
	IngestedAt      time.Time       `json:"ingested_at"`
}
