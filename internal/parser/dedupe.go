package parser

import (
	"iter"

	"elecciones/internal/models"
)

// Dedupe keeps the first entry for every value of key and reports how
// many later ones were dropped. Entries without a value for key are kept.
func Dedupe(entries iter.Seq[models.RawEntry], key string) ([]models.RawEntry, int) {
	seen := make(map[string]bool)
	unique := []models.RawEntry{}
	dropped := 0

	for entry := range entries {
		value, ok := entry.Get(key)
		if !ok {
			unique = append(unique, entry)
			continue
		}
		if seen[value] {
			dropped++
			continue
		}
		seen[value] = true
		unique = append(unique, entry)
	}

	return unique, dropped
}
