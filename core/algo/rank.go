package algo

import (
	"sort"

	"github.com/huangsam/viability/schema"
)

// RankCountries sorts countries by their index and returns the top 'limit'
// entries. Descending order puts the weakest viability first. Ties are broken
// by country name. A non-positive limit returns every country.
func RankCountries(index map[string]float64, ascending bool, limit int) []schema.RankedCountry {
	ranked := make([]schema.RankedCountry, 0, len(index))
	for country, v := range index {
		ranked = append(ranked, schema.RankedCountry{Country: country, Index: v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Index != ranked[j].Index {
			if ascending {
				return ranked[i].Index < ranked[j].Index
			}
			return ranked[i].Index > ranked[j].Index
		}
		return ranked[i].Country < ranked[j].Country
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Label = schema.GetPlainLabel(ranked[i].Index)
	}
	return ranked
}
