package domain

import (
	"regexp"
	"strings"
	"time"
)

// SubmissionStatus enumerates moderation states for submissions.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// SubmissionStatuses lists every valid status in lifecycle order.
var SubmissionStatuses = []SubmissionStatus{
	SubmissionStatusPending,
	SubmissionStatusApproved,
	SubmissionStatusRejected,
}

// ParseSubmissionStatus returns the status named by raw and whether it is valid.
// Matching is exact; stored and wire values are lowercase.
func ParseSubmissionStatus(raw string) (SubmissionStatus, bool) {
	for _, status := range SubmissionStatuses {
		if string(status) == raw {
			return status, true
		}
	}
	return "", false
}

// DisplayPreference controls how the submitter is named publicly.
type DisplayPreference string

const (
	DisplayFull      DisplayPreference = "full"
	DisplayFirst     DisplayPreference = "first"
	DisplayInitials  DisplayPreference = "initials"
	DisplayAnonymous DisplayPreference = "anonymous"
)

// ParseDisplayPreference accepts the four known preferences, case-insensitively.
func ParseDisplayPreference(raw string) (DisplayPreference, bool) {
	switch pref := DisplayPreference(strings.ToLower(strings.TrimSpace(raw))); pref {
	case DisplayFull, DisplayFirst, DisplayInitials, DisplayAnonymous:
		return pref, true
	default:
		return "", false
	}
}

// Submission is the moderation aggregate for a customer project.
type Submission struct {
	ID                string
	Shop              string
	Status            SubmissionStatus
	FirstName         string
	LastName          string
	Email             string
	SocialMediaHandle string
	ProjectName       string
	PatternName       string
	DesignerName      string
	PatternLink       string
	ProjectDetails    string
	Categories        []string
	DisplayPreference DisplayPreference
	SubmittedAt       time.Time
	ApprovedAt        *time.Time
	RejectedAt        *time.Time
	RejectionReason   *string
	UpdatedAt         time.Time
	Product           *ProductSnapshot
	Images            []Image
}

// ProductSnapshot copies commerce product data as it was at submission time.
type ProductSnapshot struct {
	ID              string
	SubmissionID    string
	ExternalID      string
	Title           string
	Handle          string
	ImageURL        string
	Price           string
	Currency        string
	VariantID       string
	VariantTitle    string
	SelectedOptions []SelectedOption
}

// SelectedOption is one ordered name/value pair of a product variant.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Image is an uploaded project photo owned by exactly one submission.
type Image struct {
	ID           string
	SubmissionID string
	URL          string
	Filename     string
	SizeBytes    int64
	MimeType     string
	CreatedAt    time.Time
}

// PublicSubmission is the storefront-safe view of an approved submission.
// It carries no raw personal fields.
type PublicSubmission struct {
	ID             string
	Shop           string
	DisplayName    string
	ProjectName    string
	PatternName    string
	DesignerName   string
	PatternLink    string
	ProjectDetails string
	Categories     []string
	SubmittedAt    time.Time
	ApprovedAt     *time.Time
	Product        *ProductSnapshot
	Images         []Image
}

// NormalizeCategory returns the stored representation of a category tag.
func NormalizeCategory(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizeCategories uppercases, trims and de-duplicates tags while keeping order.
func NormalizeCategories(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		norm := NormalizeCategory(tag)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

// HasCategory reports whether the submission carries the (normalized) tag.
func (s *Submission) HasCategory(category string) bool {
	want := NormalizeCategory(category)
	for _, tag := range s.Categories {
		if NormalizeCategory(tag) == want {
			return true
		}
	}
	return false
}

// PriceMessage explains the accepted product price format.
const PriceMessage = "Invalid product.price: must be a non-negative amount with at most 10 integer digits and 2 decimals"

var pricePattern = regexp.MustCompile(`^[0-9]{1,10}(\.[0-9]{1,2})?$`)

// ValidPrice reports whether raw fits the stored NUMERIC(12,2) non-negative amount
// without rounding. An empty price means none was given.
func ValidPrice(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || pricePattern.MatchString(raw)
}
