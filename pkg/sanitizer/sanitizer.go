package sanitizer

import (
	"strings"
	"unicode"

	"verleih/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims s and collapses every whitespace run to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

var (
	namePipeline  = Pipeline{stripControl, TrimAndNormalize}
	emailPipeline = Pipeline{strings.TrimSpace, strings.ToLower}
)

func NormalizeName(name string) string {
	return namePipeline.Apply(name)
}

func NormalizeEmail(email string) string {
	return emailPipeline.Apply(email)
}

func NormalizeText(text string) string {
	return namePipeline.Apply(text)
}

func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// RentalRequest normalizes req in place.
func RentalRequest(req *model.RentalRequest) {
	req.DepotID = NormalizeID(req.DepotID)
	req.FirstName = NormalizeName(req.FirstName)
	req.LastName = NormalizeName(req.LastName)
	req.Email = NormalizeEmail(req.Email)
	req.Purpose = NormalizeText(req.Purpose)
	for i := range req.Items {
		req.Items[i].ItemID = NormalizeID(req.Items[i].ItemID)
	}
}
