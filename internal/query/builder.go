// Package query turns untrusted listing parameters into normalized, store-safe
// filter, sort and page settings. Nothing here touches the store.
package query

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/spec-kit/project-gallery/internal/domain"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

// SortKey is an allow-listed ordering column.
type SortKey string

const (
	SortBySubmittedAt SortKey = "submittedAt"
	SortByApprovedAt  SortKey = "approvedAt"
	SortByProjectName SortKey = "projectName"
)

// Direction is an ordering direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Shorthand sort values accepted by the storefront widget.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortAZ      = "az"
	SortZA      = "za"
	SortPopular = "popular"
)

// All is the literal that disables the status and category filters.
const All = "all"

const (
	defaultPerPage = 12
	maxPerPage     = 100
)

// Params are raw request parameters. Empty strings mean "not provided".
type Params struct {
	Shop          string
	Search        string
	Status        string
	Category      string
	Sort          string
	SortKey       string
	SortDirection string
	Page          string
	PerPage       string
}

// Filter describes which submissions match.
type Filter struct {
	Shop     *string
	Search   string
	Status   *domain.SubmissionStatus
	Category string
	// SearchPersonal widens the text search to submitter names and email (admin only).
	SearchPersonal bool
}

// Sort describes the primary ordering; ties are always broken by id ascending.
type Sort struct {
	Key       SortKey
	Direction Direction
}

// Spec is the normalized listing request.
type Spec struct {
	Filter  Filter
	Sort    Sort
	Page    int
	PerPage int
	Offset  int
	Limit   int
}

// Builder normalizes Params. The zero value uses the public defaults.
type Builder struct {
	DefaultPerPage int
	MaxPerPage     int
	// FixedPerPage, when positive, ignores the caller's perPage.
	FixedPerPage int
	DefaultSort  Sort
	// SearchPersonal is copied into every Filter built.
	SearchPersonal bool
}

// NewPublicBuilder returns the builder used by the storefront listing.
func NewPublicBuilder(defaultPer, maxPer int) Builder {
	return Builder{
		DefaultPerPage: defaultPer,
		MaxPerPage:     maxPer,
		DefaultSort:    Sort{Key: SortByApprovedAt, Direction: Desc},
	}
}

// NewAdminBuilder returns the builder used by the admin list with a fixed page size.
func NewAdminBuilder(pageSize int) Builder {
	return Builder{
		FixedPerPage:   pageSize,
		DefaultSort:    Sort{Key: SortBySubmittedAt, Direction: Desc},
		SearchPersonal: true,
	}
}

// Build validates and normalizes params.
func (b Builder) Build(p Params) (Spec, error) {
	filter := Filter{
		Search:         strings.TrimSpace(p.Search),
		SearchPersonal: b.SearchPersonal,
	}

	if shop := strings.TrimSpace(p.Shop); shop != "" {
		filter.Shop = &shop
	}

	status, err := parseStatus(p.Status)
	if err != nil {
		return Spec{}, err
	}
	filter.Status = status

	if category := strings.TrimSpace(p.Category); category != "" && !strings.EqualFold(category, All) {
		filter.Category = domain.NormalizeCategory(category)
	}

	sort, err := b.parseSort(p)
	if err != nil {
		return Spec{}, err
	}

	perPage := b.perPage(p.PerPage)
	page := clamp(parseIntOr(p.Page, 1), 1, maxPage(perPage))

	return Spec{
		Filter:  filter,
		Sort:    sort,
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
		Limit:   perPage,
	}, nil
}

func (b Builder) perPage(raw string) int {
	if b.FixedPerPage > 0 {
		return b.FixedPerPage
	}
	def := b.DefaultPerPage
	if def <= 0 {
		def = defaultPerPage
	}
	ceiling := b.MaxPerPage
	if ceiling <= 0 {
		ceiling = maxPerPage
	}
	if def > ceiling {
		def = ceiling
	}
	return clamp(parseIntOr(raw, def), 1, ceiling)
}

func (b Builder) parseSort(p Params) (Sort, error) {
	def := b.DefaultSort
	if def.Key == "" {
		def = Sort{Key: SortByApprovedAt, Direction: Desc}
	}

	if shorthand := strings.ToLower(strings.TrimSpace(p.Sort)); shorthand != "" {
		sort, ok := FromShorthand(shorthand)
		if !ok {
			return Sort{}, apperrors.NewInvalidField("sort", fmt.Sprintf("Invalid sort: %s", p.Sort))
		}
		return sort, nil
	}

	sort := def
	if raw := strings.TrimSpace(p.SortKey); raw != "" {
		key, ok := ParseSortKey(raw)
		if !ok {
			return Sort{}, apperrors.NewInvalidField("sortKey", fmt.Sprintf("Invalid sortKey: %s", raw))
		}
		sort.Key = key
	}
	if raw := strings.TrimSpace(p.SortDirection); raw != "" {
		switch Direction(strings.ToLower(raw)) {
		case Asc:
			sort.Direction = Asc
		case Desc:
			sort.Direction = Desc
		default:
			return Sort{}, apperrors.NewInvalidField("sortDirection", fmt.Sprintf("Invalid sortDirection: %s", raw))
		}
	}
	return sort, nil
}

// FromShorthand maps a widget sort option to its key/direction pair.
// "popular" has no signal yet and orders like "newest".
func FromShorthand(shorthand string) (Sort, bool) {
	switch shorthand {
	case SortNewest, SortPopular:
		return Sort{Key: SortByApprovedAt, Direction: Desc}, true
	case SortOldest:
		return Sort{Key: SortByApprovedAt, Direction: Asc}, true
	case SortAZ:
		return Sort{Key: SortByProjectName, Direction: Asc}, true
	case SortZA:
		return Sort{Key: SortByProjectName, Direction: Desc}, true
	default:
		return Sort{}, false
	}
}

// ParseSortKey accepts the allow-listed keys. createdAt is an alias of submittedAt.
func ParseSortKey(raw string) (SortKey, bool) {
	switch raw {
	case string(SortBySubmittedAt), "createdAt":
		return SortBySubmittedAt, true
	case string(SortByApprovedAt):
		return SortByApprovedAt, true
	case string(SortByProjectName):
		return SortByProjectName, true
	default:
		return "", false
	}
}

func parseStatus(raw string) (*domain.SubmissionStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == All {
		return nil, nil
	}
	status, ok := domain.ParseSubmissionStatus(raw)
	if !ok {
		return nil, apperrors.NewInvalidField("status", fmt.Sprintf("Invalid status: %s", raw))
	}
	return &status, nil
}

// WithStatus returns a copy constrained to status, whatever the caller asked.
func (s Spec) WithStatus(status domain.SubmissionStatus) Spec {
	s.Filter.Status = &status
	return s
}

// StatusLabel is the status filter as the admin UI shows it.
func (s Spec) StatusLabel() string {
	if s.Filter.Status == nil {
		return All
	}
	return string(*s.Filter.Status)
}

// CacheKey is a stable digest of everything that affects the result set.
func (s Spec) CacheKey() string {
	shop := ""
	if s.Filter.Shop != nil {
		shop = *s.Filter.Shop
	}
	raw := strings.Join([]string{
		shop,
		strings.ToLower(s.Filter.Search),
		s.StatusLabel(),
		s.Filter.Category,
		strconv.FormatBool(s.Filter.SearchPersonal),
		string(s.Sort.Key),
		string(s.Sort.Direction),
		strconv.Itoa(s.Page),
		strconv.Itoa(s.PerPage),
	}, "\x1f")
	sum := blake2b.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:16])
}

// TotalPages is ceil(total / perPage); zero when there is nothing to show.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func parseIntOr(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// clamp bounds v to [lo, hi]; hi <= 0 means no upper bound.
// maxPage keeps (page-1)*perPage within int32 so the offset is valid for the store on
// any platform.
func maxPage(perPage int) int {
	return math.MaxInt32/perPage + 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
