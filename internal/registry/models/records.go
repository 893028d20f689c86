// Package models holds the raw records served by the INSEE Sirene registry.
// Field names follow the registry's JSON verbatim. Records keep the exact
// bytes they were decoded from so the audit trail can store the original payload.
package models

import "encoding/json"

// Header is the registry response envelope header.
type Header struct {
	Statut  int    `json:"statut"`
	Message string `json:"message"`
	Total   int    `json:"total"`
	Debut   int    `json:"debut"`
	Nombre  int    `json:"nombre"`
}

// LegalUnitResponse is the body of GET /siren/{siren}.
type LegalUnitResponse struct {
	Header      Header     `json:"header"`
	UniteLegale *LegalUnit `json:"uniteLegale"`
}

// EstablishmentPage is the body of GET /siret for one page of results.
type EstablishmentPage struct {
	Header         Header          `json:"header"`
	Etablissements []Establishment `json:"etablissements"`
}

// SearchQuery is one multi-criteria establishment search request.
type SearchQuery struct {
	Q                    string // e.g. "siren:552100554"
	Nombre               int    // page size
	Debut                int    // offset
	MasquerValeursNulles bool   // suppress null fields
}

// LegalUnit is a company-level registry entity.
type LegalUnit struct {
	SIREN                    Field[string]     `json:"siren,omitzero"`
	StatutDiffusion          Field[string]     `json:"statutDiffusionUniteLegale,omitzero"`
	DateCreation             Field[string]     `json:"dateCreationUniteLegale,omitzero"`
	Sigle                    Field[string]     `json:"sigleUniteLegale,omitzero"`
	Prenom1                  Field[string]     `json:"prenom1UniteLegale,omitzero"`
	PrenomUsuel              Field[string]     `json:"prenomUsuelUniteLegale,omitzero"`
	IdentifiantAssociation   Field[string]     `json:"identifiantAssociationUniteLegale,omitzero"`
	TrancheEffectifs         Field[string]     `json:"trancheEffectifsUniteLegale,omitzero"`
	AnneeEffectifs           Field[Text]       `json:"anneeEffectifsUniteLegale,omitzero"`
	DateDernierTraitement    Field[string]     `json:"dateDernierTraitementUniteLegale,omitzero"`
	NombrePeriodes           Field[int]        `json:"nombrePeriodesUniteLegale,omitzero"`
	CategorieEntreprise      Field[string]     `json:"categorieEntreprise,omitzero"`
	AnneeCategorieEntreprise Field[Text]       `json:"anneeCategorieEntreprise,omitzero"`
	Periodes                 []LegalUnitPeriod `json:"periodesUniteLegale,omitempty"`

	raw json.RawMessage
}

// LegalUnitPeriod is a time-bounded snapshot of a legal unit.
type LegalUnitPeriod struct {
	DateFin                        Field[string] `json:"dateFin,omitzero"`
	DateDebut                      Field[string] `json:"dateDebut,omitzero"`
	EtatAdministratif              Field[string] `json:"etatAdministratifUniteLegale,omitzero"`
	ChangementEtatAdministratif    Field[bool]   `json:"changementEtatAdministratifUniteLegale,omitzero"`
	Nom                            Field[string] `json:"nomUniteLegale,omitzero"`
	NomUsage                       Field[string] `json:"nomUsageUniteLegale,omitzero"`
	Denomination                   Field[string] `json:"denominationUniteLegale,omitzero"`
	DenominationUsuelle1           Field[string] `json:"denominationUsuelle1UniteLegale,omitzero"`
	DenominationUsuelle2           Field[string] `json:"denominationUsuelle2UniteLegale,omitzero"`
	DenominationUsuelle3           Field[string] `json:"denominationUsuelle3UniteLegale,omitzero"`
	CategorieJuridique             Field[string] `json:"categorieJuridiqueUniteLegale,omitzero"`
	ActivitePrincipale             Field[string] `json:"activitePrincipaleUniteLegale,omitzero"`
	NomenclatureActivitePrincipale Field[string] `json:"nomenclatureActivitePrincipaleUniteLegale,omitzero"`
	NicSiege                       Field[string] `json:"nicSiegeUniteLegale,omitzero"`
	EconomieSocialeSolidaire       Field[string] `json:"economieSocialeSolidaireUniteLegale,omitzero"`
	SocieteMission                 Field[string] `json:"societeMissionUniteLegale,omitzero"`
	CaractereEmployeur             Field[string] `json:"caractereEmployeurUniteLegale,omitzero"`
}

// Bounds returns the raw start and end dates.
func (p LegalUnitPeriod) Bounds() (start, end Field[string]) {
	return p.DateDebut, p.DateFin
}

// Establishment is a facility belonging to exactly one legal unit.
type Establishment struct {
	SIREN                 Field[string]         `json:"siren,omitzero"`
	NIC                   Field[string]         `json:"nic,omitzero"`
	SIRET                 Field[string]         `json:"siret,omitzero"`
	StatutDiffusion       Field[string]         `json:"statutDiffusionEtablissement,omitzero"`
	DateCreation          Field[string]         `json:"dateCreationEtablissement,omitzero"`
	TrancheEffectifs      Field[string]         `json:"trancheEffectifsEtablissement,omitzero"`
	AnneeEffectifs        Field[Text]           `json:"anneeEffectifsEtablissement,omitzero"`
	DateDernierTraitement Field[string]         `json:"dateDernierTraitementEtablissement,omitzero"`
	EtablissementSiege    Field[bool]           `json:"etablissementSiege,omitzero"`
	NombrePeriodes        Field[int]            `json:"nombrePeriodesEtablissement,omitzero"`
	Score                 Field[float64]        `json:"score,omitzero"`
	UniteLegale           *EmbeddedLegalUnit    `json:"uniteLegale,omitempty"`
	Adresse               *Address              `json:"adresseEtablissement,omitempty"`
	Periodes              []EstablishmentPeriod `json:"periodesEtablissement,omitempty"`

	raw json.RawMessage
}

// EmbeddedLegalUnit is the flat legal-unit summary returned inside
// establishment search results.
type EmbeddedLegalUnit struct {
	EtatAdministratif    Field[string] `json:"etatAdministratifUniteLegale,omitzero"`
	Denomination         Field[string] `json:"denominationUniteLegale,omitzero"`
	DenominationUsuelle1 Field[string] `json:"denominationUsuelle1UniteLegale,omitzero"`
	Sigle                Field[string] `json:"sigleUniteLegale,omitzero"`
	Nom                  Field[string] `json:"nomUniteLegale,omitzero"`
	NomUsage             Field[string] `json:"nomUsageUniteLegale,omitzero"`
	PrenomUsuel          Field[string] `json:"prenomUsuelUniteLegale,omitzero"`
	CategorieJuridique   Field[string] `json:"categorieJuridiqueUniteLegale,omitzero"`
	ActivitePrincipale   Field[string] `json:"activitePrincipaleUniteLegale,omitzero"`
}

// Address is the establishment's postal address block.
type Address struct {
	ComplementAdresse         Field[string] `json:"complementAdresseEtablissement,omitzero"`
	NumeroVoie                Field[Text]   `json:"numeroVoieEtablissement,omitzero"`
	IndiceRepetition          Field[string] `json:"indiceRepetitionEtablissement,omitzero"`
	TypeVoie                  Field[string] `json:"typeVoieEtablissement,omitzero"`
	LibelleVoie               Field[string] `json:"libelleVoieEtablissement,omitzero"`
	CodePostal                Field[string] `json:"codePostalEtablissement,omitzero"`
	LibelleCommune            Field[string] `json:"libelleCommuneEtablissement,omitzero"`
	LibelleCommuneEtranger    Field[string] `json:"libelleCommuneEtrangerEtablissement,omitzero"`
	DistributionSpeciale      Field[string] `json:"distributionSpecialeEtablissement,omitzero"`
	CodeCommune               Field[string] `json:"codeCommuneEtablissement,omitzero"`
	CodeCedex                 Field[string] `json:"codeCedexEtablissement,omitzero"`
	LibelleCedex              Field[string] `json:"libelleCedexEtablissement,omitzero"`
	CodePaysEtranger          Field[string] `json:"codePaysEtrangerEtablissement,omitzero"`
	LibellePaysEtranger       Field[string] `json:"libellePaysEtrangerEtablissement,omitzero"`
	CoordonneeLambertAbscisse Field[Text]   `json:"coordonneeLambertAbscisseEtablissement,omitzero"`
	CoordonneeLambertOrdonnee Field[Text]   `json:"coordonneeLambertOrdonneeEtablissement,omitzero"`
}

// EstablishmentPeriod is a time-bounded snapshot of an establishment.
type EstablishmentPeriod struct {
	DateFin                        Field[string] `json:"dateFin,omitzero"`
	DateDebut                      Field[string] `json:"dateDebut,omitzero"`
	EtatAdministratif              Field[string] `json:"etatAdministratifEtablissement,omitzero"`
	ChangementEtatAdministratif    Field[bool]   `json:"changementEtatAdministratifEtablissement,omitzero"`
	Enseigne1                      Field[string] `json:"enseigne1Etablissement,omitzero"`
	Enseigne2                      Field[string] `json:"enseigne2Etablissement,omitzero"`
	Enseigne3                      Field[string] `json:"enseigne3Etablissement,omitzero"`
	DenominationUsuelle            Field[string] `json:"denominationUsuelleEtablissement,omitzero"`
	ActivitePrincipale             Field[string] `json:"activitePrincipaleEtablissement,omitzero"`
	NomenclatureActivitePrincipale Field[string] `json:"nomenclatureActivitePrincipaleEtablissement,omitzero"`
	CaractereEmployeur             Field[string] `json:"caractereEmployeurEtablissement,omitzero"`
}

// Bounds returns the raw start and end dates.
func (p EstablishmentPeriod) Bounds() (start, end Field[string]) {
	return p.DateDebut, p.DateFin
}

type legalUnitAlias LegalUnit

// UnmarshalJSON decodes the record and keeps a copy of the original bytes.
func (u *LegalUnit) UnmarshalJSON(b []byte) error {
	var a legalUnitAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*u = LegalUnit(a)
	u.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Payload returns the bytes the record was decoded from, or its encoding
// when it was built in memory.
func (u *LegalUnit) Payload() (json.RawMessage, error) {
	if u.raw != nil {
		return u.raw, nil
	}
	return json.Marshal(legalUnitAlias(*u))
}

type establishmentAlias Establishment

// UnmarshalJSON decodes the record and keeps a copy of the original bytes.
func (e *Establishment) UnmarshalJSON(b []byte) error {
	var a establishmentAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*e = Establishment(a)
	e.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Payload returns the bytes the record was decoded from, or its encoding
// when it was built in memory.
func (e *Establishment) Payload() (json.RawMessage, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return json.Marshal(establishmentAlias(*e))
}
