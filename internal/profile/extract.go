// internal/profile/extract.go
// Package profile extracts structured profile attributes from free-text
// queries so the session learns about the user as the conversation goes.
package profile

import (
	"regexp"
	"strconv"
	"strings"

	"housing-advisor/internal/models"
)

var singaporeAreas = []string{
	"tampines", "jurong", "woodlands", "punggol", "sengkang", "bishan",
	"toa payoh", "bedok", "hougang", "ang mo kio", "clementi",
	"bukit batok", "yishun",
}

var (
	incomePatterns = []*regexp.Regexp{
		regexp.MustCompile(`earn(?:ing)?\s+\$?(\d{1,2}[,\s]*\d{3,})`),
		regexp.MustCompile(`income\s+(?:of\s+)?\$?(\d{1,2}[,\s]*\d{3,})`),
		regexp.MustCompile(`(\d{1,2}[,\s]*\d{3,})\s*(?:dollars?|sgd|per month|monthly)`),
		regexp.MustCompile(`\$\s*(\d{1,2}[,\s]*\d{3,})`),
	}
	incomeKPattern = regexp.MustCompile(`(\d{1,2})k\s*(?:per month|monthly|income)`)

	budgetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`under\s+\$?(\d{3,}k?)`),
		regexp.MustCompile(`below\s+\$?(\d{3,}k?)`),
		regexp.MustCompile(`less than\s+\$?(\d{3,}k?)`),
		regexp.MustCompile(`budget\s+(?:of\s+)?\$?(\d{3,}k?)`),
	}

	roomPattern = regexp.MustCompile(`(\d+)[-\s]?(?:room|bed)`)
	agePattern  = regexp.MustCompile(`(?:i am|i'm|aged?)\s+(\d{2})\b`)
)

// Extract scans the query for profile attributes and applies what it finds
// to the profile. It returns the names of the fields it updated.
func Extract(p *models.Profile, query string) []string {
	q := strings.ToLower(query)
	var updated []string

	if c := extractCitizenship(q); c != "" && p.Citizenship != c {
		p.Citizenship = c
		updated = append(updated, "citizenship")
	}

	if income, ok := extractIncome(q); ok {
		p.SetField("monthly_income", income)
		updated = append(updated, "monthly_income")
	}

	if budget, ok := extractBudget(q); ok {
		p.SetField("budget", budget)
		updated = append(updated, "budget")
	}

	if age, ok := extractAge(q); ok {
		p.SetField("age", age)
		updated = append(updated, "age")
	}

	if ft := extractFlatType(q); ft != "" && p.FlatType != ft {
		p.FlatType = ft
		updated = append(updated, "flat_type")
	}

	if m := roomPattern.FindStringSubmatch(q); m != nil {
		if rooms, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.SetField("rooms", rooms)
			updated = append(updated, "rooms")
		}
	}

	if areas := extractAreas(q); len(areas) > 0 {
		before := len(p.PreferredAreas)
		p.PreferredAreas = mergeAreas(p.PreferredAreas, areas)
		if len(p.PreferredAreas) != before {
			updated = append(updated, "preferred_areas")
		}
	}

	return updated
}

func extractCitizenship(q string) string {
	switch {
	case strings.Contains(q, "singaporean"),
		strings.Contains(q, "singapore citizen"),
		strings.Contains(q, "citizen of singapore"):
		return "Singapore Citizen"
	case strings.Contains(q, "citizen") && strings.Contains(q, "singapore"):
		return "Singapore Citizen"
	case strings.Contains(q, "permanent resident"),
		strings.Contains(q, "perm resident"),
		containsWord(q, "pr"):
		return "Permanent Resident"
	case strings.Contains(q, "foreigner"),
		strings.Contains(q, "work permit"),
		strings.Contains(q, "employment pass"):
		return "Foreigner"
	}
	return ""
}

func extractIncome(q string) (float64, bool) {
	if m := incomeKPattern.FindStringSubmatch(q); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v * 1000, true
		}
	}
	for _, re := range incomePatterns {
		m := re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		raw := strings.NewReplacer(",", "", " ", "").Replace(m[1])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		// Plausible monthly income only; larger figures are prices.
		if v >= 1000 && v <= 50000 {
			return v, true
		}
	}
	return 0, false
}

func extractBudget(q string) (float64, bool) {
	for _, re := range budgetPatterns {
		m := re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		raw := m[1]
		mult := 1.0
		if strings.HasSuffix(raw, "k") {
			raw = strings.TrimSuffix(raw, "k")
			mult = 1000
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		v *= mult
		if v > 100000 {
			return v, true
		}
	}
	return 0, false
}

func extractAge(q string) (float64, bool) {
	m := agePattern.FindStringSubmatch(q)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 18 || v > 99 {
		return 0, false
	}
	return v, true
}

func extractFlatType(q string) string {
	switch {
	case strings.Contains(q, "executive condo"), containsWord(q, "ec"):
		return "EC"
	case strings.Contains(q, "hdb"), strings.Contains(q, "public housing"):
		return "HDB"
	case strings.Contains(q, "condo"), strings.Contains(q, "private"):
		return "Private"
	}
	return ""
}

func extractAreas(q string) []string {
	var areas []string
	for _, area := range singaporeAreas {
		if strings.Contains(q, area) {
			areas = append(areas, area)
		}
	}
	return areas
}

func mergeAreas(existing, found []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := append([]string{}, existing...)
	for _, a := range existing {
		seen[a] = true
	}
	for _, a := range found {
		if !seen[a] {
			merged = append(merged, a)
			seen[a] = true
		}
	}
	return merged
}

func containsWord(q, word string) bool {
	for _, tok := range strings.FieldsFunc(q, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '?' || r == '!'
	}) {
		if tok == word {
			return true
		}
	}
	return false
}
