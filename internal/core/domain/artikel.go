package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Artikel is a single article master-data record. The JSON tags are the
// external representation used for both cache values and API responses.
type Artikel struct {
	ID            int64             `json:"id"`
	Artikelnummer string            `json:"artikelnummer" validate:"required"`
	Bezeichnung   string            `json:"bezeichnung" validate:"required"`
	Beschreibung  string            `json:"beschreibung"`
	Kategorie     string            `json:"kategorie"`
	Lieferant     string            `json:"lieferant"`
	Tags          []string          `json:"tags"`
	Dimension     map[string]string `json:"dimension"`
	Gewicht       float64           `json:"gewicht"`
	Preis         decimal.Decimal   `json:"preis"`
	Waehrung      string            `json:"waehrung"`
	Einheit       string            `json:"einheit"`
	Lagerbestand  int               `json:"lagerbestand" validate:"min=0"`
	MinBestand    int               `json:"minBestand"`
	MaxBestand    int               `json:"maxBestand" validate:"gtefield=MinBestand"`
	Aktiv         bool              `json:"aktiv"`
	ErstelltAm    time.Time         `json:"erstelltAm"`
	GeaendertAm   time.Time         `json:"geaendertAm"`
}

// NewArtikel returns an article with every field set to its documented
// default. Decode request payloads or import rows into the result so that
// omitted fields keep their defaults.
func NewArtikel() *Artikel {
	now := time.Now()
	return &Artikel{
		Tags:        []string{},
		Dimension:   map[string]string{},
		Preis:       decimal.Zero,
		Waehrung:    "EUR",
		Aktiv:       true,
		ErstelltAm:  now,
		GeaendertAm: now,
	}
}

// Validate checks the persistence invariants. It must pass before any write;
// an article is never stored in an invalid state.
func (a *Artikel) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fromFieldError(err.(validator.ValidationErrors)[0])
	}
	// decimal fields are opaque to validator tags
	if a.Preis.IsNegative() {
		return &ValidationError{Feld: "Preis", Meldung: "must not be negative"}
	}
	return nil
}
