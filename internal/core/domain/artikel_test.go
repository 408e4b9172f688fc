package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArtikel() *Artikel {
	a := NewArtikel()
	a.Artikelnummer = "A-1"
	a.Bezeichnung = "Testartikel"
	a.Preis = decimal.NewFromInt(10)
	a.Lagerbestand = 5
	a.MaxBestand = 100
	return a
}

func TestNewArtikel_Defaults(t *testing.T) {
	a := NewArtikel()

	assert.Equal(t, "EUR", a.Waehrung)
	assert.True(t, a.Aktiv)
	assert.NotNil(t, a.Tags)
	assert.NotNil(t, a.Dimension)
	assert.False(t, a.ErstelltAm.IsZero())
	assert.False(t, a.GeaendertAm.IsZero())
	assert.Zero(t, a.ID)
}

func TestValidate_Valid(t *testing.T) {
	require.NoError(t, validArtikel().Validate())
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Artikel)
		feld   string
	}{
		{"empty artikelnummer", func(a *Artikel) { a.Artikelnummer = "" }, "Artikelnummer"},
		{"empty bezeichnung", func(a *Artikel) { a.Bezeichnung = "" }, "Bezeichnung"},
		{"negative lagerbestand", func(a *Artikel) { a.Lagerbestand = -1 }, "Lagerbestand"},
		{"min above max", func(a *Artikel) { a.MinBestand = 10; a.MaxBestand = 5 }, "MaxBestand"},
		{"negative preis", func(a *Artikel) { a.Preis = decimal.NewFromInt(-1) }, "Preis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validArtikel()
			tt.mutate(a)

			err := a.Validate()
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.feld, ve.Feld)
		})
	}
}

func TestValidate_MinEqualsMax(t *testing.T) {
	a := validArtikel()
	a.MinBestand = 50
	a.MaxBestand = 50

	assert.NoError(t, a.Validate())
}
