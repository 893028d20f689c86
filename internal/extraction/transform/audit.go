package transform

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"sirene/internal/extraction/models"
	raw "sirene/internal/registry/models"
	dErrors "sirene/pkg/domain-errors"
)

// Source names the registry in audit records and metadata.
const Source = "insee_sirene"

// ContentHash returns the hex SHA-256 of payload re-encoded with sorted
// object keys, so payloads differing only in key order hash identically.
// Numbers keep their literal text.
func ContentHash(payload json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

var sourceTimestampLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	models.DateLayout,
}

// sourceTimestamp parses the registry's last-processing timestamp, which is
// served without a zone and taken as UTC.
func sourceTimestamp(f raw.Field[string]) (time.Time, bool) {
	s := strings.TrimSpace(f.OrZero())
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range sourceTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (t *Transformer) registryRecord(recordType, sourceID string, payload json.RawMessage, updated raw.Field[string], ref time.Time) (*models.RegistryRecord, error) {
	hash, err := ContentHash(payload)
	if err != nil {
		return nil, dErrors.Transformation("registry payload is not valid JSON", map[string]any{
			"record_type": recordType,
			"source_id":   sourceID,
		})
	}
	sourceUpdatedAt, ok := sourceTimestamp(updated)
	if !ok {
		sourceUpdatedAt = ref
	}
	return &models.RegistryRecord{
		ID:              uuid.New(),
		Source:          Source,
		RecordType:      recordType,
		SourceID:        sourceID,
		Payload:         payload,
		ContentHash:     hash,
		SourceUpdatedAt: sourceUpdatedAt,
		IngestedAt:      t.now().UTC(),
	}, nil
}

// LegalUnitRecord builds the audit record of a raw legal unit.
func (t *Transformer) LegalUnitRecord(u *raw.LegalUnit) (*models.RegistryRecord, error) {
	return t.legalUnitRecord(u, t.extractedAt)
}

func (t *Transformer) legalUnitRecord(u *raw.LegalUnit, ref time.Time) (*models.RegistryRecord, error) {
	payload, err := u.Payload()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransformation, "legal unit payload could not be encoded")
	}
	return t.registryRecord(models.RecordLegalUnit, strings.TrimSpace(u.SIREN.OrZero()), payload, u.DateDernierTraitement, ref)
}

// EstablishmentRecord builds the audit record of a raw establishment.
func (t *Transformer) EstablishmentRecord(e *raw.Establishment, siret string) (*models.RegistryRecord, error) {
	return t.establishmentRecord(e, siret, t.extractedAt)
}

func (t *Transformer) establishmentRecord(e *raw.Establishment, siret string, ref time.Time) (*models.RegistryRecord, error) {
	payload, err := e.Payload()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransformation, "establishment payload could not be encoded")
	}
	return t.registryRecord(models.RecordEstablishment, siret, payload, e.DateDernierTraitement, ref)
}
