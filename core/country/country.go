// Package country resolves country spellings, abbreviations and ISO codes to
// canonical country names.
package country

import (
	"strings"
	"unicode"
)

// isoCodes maps upper-cased ISO 3166 alpha-3 and alpha-2 codes to canonical names.
var isoCodes = map[string]string{
	"USA": "United States", "US": "United States",
	"CHN": "China", "CN": "China",
	"IND": "India", "IN": "India",
	"DEU": "Germany", "DE": "Germany",
	"RUS": "Russia", "RU": "Russia",
	"KOR": "South Korea", "KR": "South Korea",
	"GBR": "United Kingdom", "GB": "United Kingdom", "UK": "United Kingdom",
	"FRA": "France", "FR": "France",
	"JPN": "Japan", "JP": "Japan",
	"BRA": "Brazil", "BR": "Brazil",
	"CAN": "Canada", "CA": "Canada",
	"AUS": "Australia", "AU": "Australia",
	"SAU": "Saudi Arabia", "SA": "Saudi Arabia",
	"ZAF": "South Africa", "ZA": "South Africa",
	"ITA": "Italy", "IT": "Italy",
	"ESP": "Spain", "ES": "Spain",
	"NLD": "Netherlands", "NL": "Netherlands",
	"POL": "Poland", "PL": "Poland",
	"IDN": "Indonesia", "ID": "Indonesia",
	"TUR": "Turkey", "TR": "Turkey",
	"MEX": "Mexico", "MX": "Mexico",
	"IRN": "Iran", "IR": "Iran",
	"THA": "Thailand", "TH": "Thailand",
	"ARE": "United Arab Emirates", "AE": "United Arab Emirates",
	"EGY": "Egypt", "EG": "Egypt",
	"ISR": "Israel", "IL": "Israel",
	"NOR": "Norway", "NO": "Norway",
	"ARG": "Argentina", "AR": "Argentina",
	"IRL": "Ireland", "IE": "Ireland",
	"MYS": "Malaysia", "MY": "Malaysia",
	"BGD": "Bangladesh", "BD": "Bangladesh",
	"PHL": "Philippines", "PH": "Philippines",
	"SGP": "Singapore", "SG": "Singapore",
	"CHL": "Chile", "CL": "Chile",
	"FIN": "Finland", "FI": "Finland",
	"DNK": "Denmark", "DK": "Denmark",
	"NZL": "New Zealand", "NZ": "New Zealand",
	"SWE": "Sweden", "SE": "Sweden",
	"AUT": "Austria", "AT": "Austria",
	"ISL": "Iceland", "IS": "Iceland",
	"BEL": "Belgium", "BE": "Belgium",
	"CHE": "Switzerland", "CH": "Switzerland",
	"VNM": "Vietnam", "VN": "Vietnam",
	"PAK": "Pakistan", "PK": "Pakistan",
	"KAZ": "Kazakhstan", "KZ": "Kazakhstan",
	"MNG": "Mongolia", "MN": "Mongolia",
	"COL": "Colombia", "CO": "Colombia",
	"UKR": "Ukraine", "UA": "Ukraine",
	"CZE": "Czechia", "CZ": "Czechia",
	"GRC": "Greece", "GR": "Greece",
	"BGR": "Bulgaria", "BG": "Bulgaria",
	"ROU": "Romania", "RO": "Romania",
	"SRB": "Serbia", "RS": "Serbia",
	"MOZ": "Mozambique", "MZ": "Mozambique",
	"ZWE": "Zimbabwe", "ZW": "Zimbabwe",
	"BWA": "Botswana", "BW": "Botswana",
	"COD": "Democratic Republic of the Congo", "CD": "Democratic Republic of the Congo",
	"CIV": "Côte d'Ivoire", "CI": "Côte d'Ivoire",
	"NGA": "Nigeria", "NG": "Nigeria",
	"PRT": "Portugal", "PT": "Portugal",
	"HUN": "Hungary", "HU": "Hungary",
	"SVK": "Slovakia", "SK": "Slovakia",
	"EST": "Estonia", "EE": "Estonia",
	"LAO": "Laos", "LA": "Laos",
	"PRK": "North Korea", "KP": "North Korea",
	"TWN": "Taiwan", "TW": "Taiwan",
}

// aliases maps lower-cased alternative spellings to canonical names.
var aliases = map[string]string{
	"united states of america":         "United States",
	"united states":                    "United States",
	"u.s.":                             "United States",
	"u.s.a.":                           "United States",
	"great britain":                    "United Kingdom",
	"britain":                          "United Kingdom",
	"s. korea":                         "South Korea",
	"korea, rep.":                      "South Korea",
	"republic of korea":                "South Korea",
	"korea, republic of":               "South Korea",
	"korea, dem. people's rep.":        "North Korea",
	"viet nam":                         "Vietnam",
	"congo":                            "Democratic Republic of the Congo",
	"congo, dem. rep.":                 "Democratic Republic of the Congo",
	"dr congo":                         "Democratic Republic of the Congo",
	"ivory coast":                      "Côte d'Ivoire",
	"cote d'ivoire":                    "Côte d'Ivoire",
	"russian federation":               "Russia",
	"iran, islamic rep.":               "Iran",
	"iran (islamic republic of)":       "Iran",
	"egypt, arab rep.":                 "Egypt",
	"turkiye":                          "Turkey",
	"türkiye":                          "Turkey",
	"czech republic":                   "Czechia",
	"lao pdr":                          "Laos",
	"taiwan, province of china":        "Taiwan",
	"slovak republic":                  "Slovakia",
	"democratic republic of the congo": "Democratic Republic of the Congo",
}

// Canonical maps an arbitrary spelling or code to a canonical country name.
// Unknown input is returned trimmed and otherwise unchanged.
func Canonical(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if c, ok := isoCodes[strings.ToUpper(trimmed)]; ok {
		return c
	}
	if c, ok := aliases[strings.ToLower(collapseSpaces(trimmed))]; ok {
		return c
	}
	return trimmed
}

// Candidates returns the spellings tried, in order, when matching rows for a
// requested country: canonical form, exact string, whitespace-stripped variant.
// Duplicates are removed while preserving order.
func Candidates(name string) []string {
	raw := []string{Canonical(name), name, stripSpaces(name)}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Matches reports whether a row value identifies the requested country.
func Matches(rowValue, requested string) bool {
	v := strings.TrimSpace(rowValue)
	if v == "" {
		return false
	}
	for _, c := range Candidates(requested) {
		if v == c {
			return true
		}
	}
	return Canonical(v) == Canonical(requested)
}

// CanonicalList canonicalizes names, dropping blanks and duplicates while
// preserving first-seen order.
func CanonicalList(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		c := Canonical(n)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
