package country_test

import (
	"testing"

	"github.com/huangsam/viability/core/country"
	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"USA", "United States"},
		{"us", "United States"},
		{" United States of America ", "United States"},
		{"UK", "United Kingdom"},
		{"GBR", "United Kingdom"},
		{"Russian Federation", "Russia"},
		{"RUS", "Russia"},
		{"Iran, Islamic Rep.", "Iran"},
		{"Egypt, Arab Rep.", "Egypt"},
		{"S. Korea", "South Korea"},
		{"Korea,  Rep.", "South Korea"},
		{"Viet Nam", "Vietnam"},
		{"Ivory Coast", "Côte d'Ivoire"},
		{"zaf", "South Africa"},
		{"India", "India"},
		{"Atlantis", "Atlantis"},
		{"  Atlantis  ", "Atlantis"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, country.Canonical(tt.input))
		})
	}
}

func TestCanonicalIsDeterministicAndIdempotent(t *testing.T) {
	for _, in := range []string{"USA", "UK", "Viet Nam", "Germany", "Unknownland"} {
		first := country.Canonical(in)
		assert.Equal(t, first, country.Canonical(in))
		assert.Equal(t, first, country.Canonical(first), "canonical names map to themselves")
	}
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"United States", "USA"}, country.Candidates("USA"))
	assert.Equal(t, []string{"South Africa", "SouthAfrica"}, country.Candidates("South Africa"))
	assert.Equal(t, []string{"India"}, country.Candidates("India"))
	assert.Empty(t, country.Candidates(""))
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		row       string
		requested string
		expected  bool
	}{
		{"exact", "India", "India", true},
		{"code row", "USA", "United States", true},
		{"alias row", "United States of America", "US", true},
		{"stripped", "SouthAfrica", "South Africa", true},
		{"different", "China", "India", false},
		{"blank row", " ", "India", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, country.Matches(tt.row, tt.requested))
		})
	}
}

func TestCanonicalList(t *testing.T) {
	got := country.CanonicalList([]string{"USA", "United States", " ", "IND", "India", "Chile"})
	assert.Equal(t, []string{"United States", "India", "Chile"}, got)
}
