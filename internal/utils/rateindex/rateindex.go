// Package rateindex computes the bidirectional view over stored rate records:
// every record is visible in its stored direction, and additionally as a
// reciprocal in the opposite direction unless a record is stored for that
// reversed key. The view is computed lazily per request rather than
// materialized in the store.
package rateindex

import (
	"sort"

	"github.com/cambiar/rates-api/internal/models"
	"github.com/shopspring/decimal"
)

// Entry is one visible rate from a base currency to a target currency.
type Entry struct {
	Currency string
	RateType string
	Rate     decimal.Decimal
	Source   string
	Derived  bool // true when the rate is a computed reciprocal
}

// rateTypePriority is the default ordering applied when a caller does not
// request a specific rate type. Unranked types sort after all ranked ones.
var rateTypePriority = map[string]int{
	models.RateTypeOfficial: 0,
	models.RateTypeBlue:     1,
	models.RateTypeMEP:      2,
	models.RateTypeCCL:      3,
}

// Rank returns the priority position of a rate type. Unknown types share the
// lowest rank.
func Rank(rateType string) int {
	if p, ok := rateTypePriority[rateType]; ok {
		return p
	}
	return len(rateTypePriority)
}

// RatesForBase builds the map target currency -> rate type -> entry for one
// base currency, from records that touch the base on a single date. Records
// stored with the base as FromCurrency yield direct entries; records stored
// with the base as ToCurrency yield reciprocal entries only where no direct
// record exists for the same (target, rate type).
func RatesForBase(base string, records []models.RateRecord) map[string]map[string]Entry {
	result := make(map[string]map[string]Entry)

	// Direct entries first; they shadow any reciprocal for the same key.
	for _, rec := range records {
		if rec.FromCurrency != base || !rec.Rate.IsPositive() {
			continue
		}
		put(result, Entry{
			Currency: rec.ToCurrency,
			RateType: rec.RateType,
			Rate:     rec.Rate,
			Source:   rec.Source,
		})
	}

	one := decimal.NewFromInt(1)
	for _, rec := range records {
		if rec.ToCurrency != base || !rec.Rate.IsPositive() {
			continue
		}
		if _, exists := result[rec.FromCurrency][rec.RateType]; exists {
			continue
		}
		put(result, Entry{
			Currency: rec.FromCurrency,
			RateType: rec.RateType,
			Rate:     one.Div(rec.Rate),
			Source:   rec.Source + " (computed inverse)",
			Derived:  true,
		})
	}

	return result
}

// FilterType restricts records to a single rate type. Applying the filter
// before RatesForBase is equivalent to filtering the view afterwards, since
// reciprocal shadowing never crosses rate types.
func FilterType(records []models.RateRecord, rateType string) []models.RateRecord {
	if rateType == "" {
		return records
	}
	filtered := make([]models.RateRecord, 0, len(records))
	for _, rec := range records {
		if rec.RateType == rateType {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// PreferredType picks the rate type to use when the caller requested none,
// following the default priority ordering. Ties among unranked types resolve
// to the lexicographically smallest for determinism.
func PreferredType(types []string) (string, bool) {
	if len(types) == 0 {
		return "", false
	}
	sorted := append([]string(nil), types...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := Rank(sorted[i]), Rank(sorted[j])
		if ri != rj {
			return ri < rj
		}
		return sorted[i] < sorted[j]
	})
	return sorted[0], true
}

// Rates flattens the entries for one target into rate type -> value.
func Rates(entries map[string]Entry) map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal, len(entries))
	for rateType, e := range entries {
		rates[rateType] = e.Rate
	}
	return rates
}

func put(m map[string]map[string]Entry, e Entry) {
	if m[e.Currency] == nil {
		m[e.Currency] = make(map[string]Entry)
	}
	m[e.Currency][e.RateType] = e
}
