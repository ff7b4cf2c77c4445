package constants

import (
	"strings"
)

// Category groups wallet contacts.
type Category string

const (
	Client   Category = "Client"
	Prospect Category = "Prospect"
	Partner  Category = "Partner"
	Vendor   Category = "Vendor"
	Investor Category = "Investor"
	Press    Category = "Press"
	Other    Category = "Other"
)

var allCategories = []Category{
	Client,
	Prospect,
	Partner,
	Vendor,
	Investor,
	Press,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free-form labels onto a Category. The boolean is false
// when the label was not recognized and Other was substituted.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Category{
		"customer":   Client,
		"customers":  Client,
		"account":    Client,
		"lead":       Prospect,
		"leads":      Prospect,
		"supplier":   Vendor,
		"provider":   Vendor,
		"reseller":   Partner,
		"affiliate":  Partner,
		"vc":         Investor,
		"angel":      Investor,
		"media":      Press,
		"journalist": Press,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
