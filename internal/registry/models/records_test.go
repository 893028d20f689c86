package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTriState(t *testing.T) {
	var unit LegalUnit
	require.NoError(t, json.Unmarshal([]byte(`{
		"siren": "552100554",
		"sigleUniteLegale": null,
		"nombrePeriodesUniteLegale": 3
	}`), &unit))

	t.Run("value", func(t *testing.T) {
		v, ok := unit.SIREN.Get()
		assert.True(t, ok)
		assert.Equal(t, "552100554", v)
		assert.True(t, unit.SIREN.IsSet())
		assert.Equal(t, 3, unit.NombrePeriodes.OrZero())
	})

	t.Run("null", func(t *testing.T) {
		assert.True(t, unit.Sigle.IsNull())
		assert.False(t, unit.Sigle.IsSet())
		assert.Nil(t, unit.Sigle.Ptr())
	})

	t.Run("unset", func(t *testing.T) {
		assert.True(t, unit.DateCreation.IsUnset())
		assert.False(t, unit.DateCreation.IsNull())
		_, ok := unit.DateCreation.Get()
		assert.False(t, ok)
	})
}

func TestTextAcceptsStringsAndNumbers(t *testing.T) {
	var addr Address
	require.NoError(t, json.Unmarshal([]byte(`{
		"coordonneeLambertAbscisseEtablissement": "652345.12",
		"coordonneeLambertOrdonneeEtablissement": 6862275.45,
		"numeroVoieEtablissement": 12
	}`), &addr))

	assert.Equal(t, Text("652345.12"), addr.CoordonneeLambertAbscisse.OrZero())
	assert.Equal(t, Text("6862275.45"), addr.CoordonneeLambertOrdonnee.OrZero())
	assert.Equal(t, "12", addr.NumeroVoie.OrZero().String())

	f, err := addr.CoordonneeLambertOrdonnee.OrZero().Float()
	require.NoError(t, err)
	assert.InDelta(t, 6862275.45, f, 1e-9)
}

func TestPayloadKeepsOriginalBytes(t *testing.T) {
	original := `{"siret":"55210055400013","unknownField":{"b":1,"a":2},"siren":"552100554"}`

	var est Establishment
	require.NoError(t, json.Unmarshal([]byte(original), &est))

	payload, err := est.Payload()
	require.NoError(t, err)
	assert.JSONEq(t, original, string(payload))
	assert.Equal(t, original, string(payload))
}

func TestPayloadForInMemoryRecord(t *testing.T) {
	unit := LegalUnit{
		SIREN: Value("552100554"),
		Sigle: Null[string](),
	}

	payload, err := unit.Payload()
	require.NoError(t, err)
	assert.JSONEq(t, `{"siren":"552100554","sigleUniteLegale":null}`, string(payload))
}

func TestEstablishmentPageDecodes(t *testing.T) {
	body := `{
		"header": {"statut": 200, "message": "OK", "total": 2, "debut": 0, "nombre": 2},
		"etablissements": [
			{"siret": "55210055400013", "etablissementSiege": true,
			 "periodesEtablissement": [{"dateDebut": "2000-01-01", "dateFin": null, "etatAdministratifEtablissement": "A"}]},
			{"siret": "55210055400021", "adresseEtablissement": {"codePostalEtablissement": "75008"}}
		]
	}`

	var page EstablishmentPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))

	assert.Equal(t, 2, page.Header.Total)
	require.Len(t, page.Etablissements, 2)
	assert.True(t, page.Etablissements[0].EtablissementSiege.OrZero())
	require.Len(t, page.Etablissements[0].Periodes, 1)
	assert.True(t, page.Etablissements[0].Periodes[0].DateFin.IsNull())
	assert.Nil(t, page.Etablissements[0].Adresse)
	require.NotNil(t, page.Etablissements[1].Adresse)
	assert.Equal(t, "75008", page.Etablissements[1].Adresse.CodePostal.OrZero())
}
