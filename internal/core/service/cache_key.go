package service

import (
	"strconv"

	"github.com/kbreuer/artikelstamm/internal/core/domain"
)

// Cache keys are derived here and nowhere else, so the keys written on
// population always match the keys removed on invalidation.
const (
	cacheKeyIDPrefix     = "artikel:id:"
	cacheKeyNummerPrefix = "artikel:nr:"
)

func keyID(id int64) string {
	return cacheKeyIDPrefix + strconv.FormatInt(id, 10)
}

func keyNummer(nummer string) string {
	return cacheKeyNummerPrefix + nummer
}

func cacheKeys(a *domain.Artikel) []string {
	return []string{keyID(a.ID), keyNummer(a.Artikelnummer)}
}
