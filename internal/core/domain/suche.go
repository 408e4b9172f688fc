package domain

import "github.com/shopspring/decimal"

// SuchFilter narrows a search. Zero-valued fields are ignored; NurAktive
// defaults to true when nil.
type SuchFilter struct {
	Bezeichnung string
	Kategorie   string
	Lieferant   string
	PreisMin    *decimal.Decimal
	PreisMax    *decimal.Decimal
	NurAktive   *bool
	Limit       int
	Offset      int
}

type BatchFehler struct {
	Artikel *Artikel `json:"artikel"`
	Fehler  string   `json:"fehler"`
}

// BatchErgebnis reports a batch import: every input article ends up in
// exactly one of the two lists.
type BatchErgebnis struct {
	BatchID        string        `json:"batchId"`
	Erfolgreich    []*Artikel    `json:"erfolgreich"`
	Fehlgeschlagen []BatchFehler `json:"fehlgeschlagen"`
}
