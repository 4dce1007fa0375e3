// Package displayname derives the public identity of a submitter and strips raw
// personal fields from storefront views.
package displayname

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spec-kit/project-gallery/internal/domain"
)

// Anonymous is shown for anonymous submitters and when no name is on record.
const Anonymous = "Anonymous"

// Resolve returns the public name for the given names and preference.
// Unknown preferences render like DisplayFull.
func Resolve(firstName, lastName string, pref domain.DisplayPreference) string {
	first := strings.TrimSpace(firstName)
	last := strings.TrimSpace(lastName)

	if pref == domain.DisplayAnonymous {
		return Anonymous
	}
	if first == "" && last == "" {
		return Anonymous
	}

	switch pref {
	case domain.DisplayFirst:
		if first != "" {
			return first
		}
		return last
	case domain.DisplayInitials:
		return initial(first) + initial(last)
	default:
		return strings.TrimSpace(first + " " + last)
	}
}

// initial is the upper-cased first letter followed by a dot, or "" for an empty name.
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r)) + "."
}

// Public builds the storefront view of a submission. The returned value has no
// first name, last name, email or social handle.
func Public(sub domain.Submission) domain.PublicSubmission {
	images := make([]domain.Image, len(sub.Images))
	copy(images, sub.Images)
	categories := make([]string, len(sub.Categories))
	copy(categories, sub.Categories)

	return domain.PublicSubmission{
		ID:             sub.ID,
		Shop:           sub.Shop,
		DisplayName:    Resolve(sub.FirstName, sub.LastName, sub.DisplayPreference),
		ProjectName:    sub.ProjectName,
		PatternName:    sub.PatternName,
		DesignerName:   sub.DesignerName,
		PatternLink:    sub.PatternLink,
		ProjectDetails: sub.ProjectDetails,
		Categories:     categories,
		SubmittedAt:    sub.SubmittedAt,
		ApprovedAt:     sub.ApprovedAt,
		Product:        sub.Product,
		Images:         images,
	}
}

// PublicAll maps Public over a page of submissions.
func PublicAll(subs []domain.Submission) []domain.PublicSubmission {
	out := make([]domain.PublicSubmission, 0, len(subs))
	for _, sub := range subs {
		out = append(out, Public(sub))
	}
	return out
}
