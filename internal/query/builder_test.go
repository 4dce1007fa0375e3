package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-gallery/internal/domain"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

func TestBuildDefaults(t *testing.T) {
	spec, err := NewPublicBuilder(12, 100).Build(Params{})
	require.NoError(t, err)

	assert.Nil(t, spec.Filter.Shop)
	assert.Nil(t, spec.Filter.Status)
	assert.Empty(t, spec.Filter.Search)
	assert.Empty(t, spec.Filter.Category)
	assert.Equal(t, Sort{Key: SortByApprovedAt, Direction: Desc}, spec.Sort)
	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, 12, spec.PerPage)
	assert.Equal(t, 0, spec.Offset)
	assert.Equal(t, 12, spec.Limit)
}

func TestBuildStatus(t *testing.T) {
	b := NewAdminBuilder(10)

	for _, status := range domain.SubmissionStatuses {
		spec, err := b.Build(Params{Status: string(status)})
		require.NoError(t, err)
		require.NotNil(t, spec.Filter.Status)
		assert.Equal(t, status, *spec.Filter.Status)
	}

	spec, err := b.Build(Params{Status: "all"})
	require.NoError(t, err)
	assert.Nil(t, spec.Filter.Status)
	assert.Equal(t, "all", spec.StatusLabel())

	_, err = b.Build(Params{Status: "archived"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Contains(t, err.Error(), "status")
}

func TestBuildCategoryIsUppercased(t *testing.T) {
	b := NewPublicBuilder(12, 100)

	spec, err := b.Build(Params{Category: " socks "})
	require.NoError(t, err)
	assert.Equal(t, "SOCKS", spec.Filter.Category)

	spec, err = b.Build(Params{Category: "ALL"})
	require.NoError(t, err)
	assert.Empty(t, spec.Filter.Category)
}

func TestBuildShopScope(t *testing.T) {
	spec, err := NewPublicBuilder(12, 100).Build(Params{Shop: "wool.myshopify.com", Search: "  hat "})
	require.NoError(t, err)
	require.NotNil(t, spec.Filter.Shop)
	assert.Equal(t, "wool.myshopify.com", *spec.Filter.Shop)
	assert.Equal(t, "hat", spec.Filter.Search)
	assert.False(t, spec.Filter.SearchPersonal)
}

func TestBuildSortShorthand(t *testing.T) {
	cases := map[string]Sort{
		"newest":  {Key: SortByApprovedAt, Direction: Desc},
		"oldest":  {Key: SortByApprovedAt, Direction: Asc},
		"az":      {Key: SortByProjectName, Direction: Asc},
		"za":      {Key: SortByProjectName, Direction: Desc},
		"popular": {Key: SortByApprovedAt, Direction: Desc},
		"ZA":      {Key: SortByProjectName, Direction: Desc},
	}
	b := NewPublicBuilder(12, 100)
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			spec, err := b.Build(Params{Sort: in, SortKey: "submittedAt", SortDirection: "asc"})
			require.NoError(t, err)
			assert.Equal(t, want, spec.Sort)
		})
	}

	_, err := b.Build(Params{Sort: "random"})
	require.Error(t, err)
}

func TestBuildSortKeyAllowList(t *testing.T) {
	b := NewAdminBuilder(10)

	spec, err := b.Build(Params{SortKey: "projectName", SortDirection: "ASC"})
	require.NoError(t, err)
	assert.Equal(t, Sort{Key: SortByProjectName, Direction: Asc}, spec.Sort)

	spec, err = b.Build(Params{SortKey: "createdAt"})
	require.NoError(t, err)
	assert.Equal(t, Sort{Key: SortBySubmittedAt, Direction: Desc}, spec.Sort)

	_, err = b.Build(Params{SortKey: "email; DROP TABLE submissions"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sortKey")

	_, err = b.Build(Params{SortDirection: "sideways"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sortDirection")
}

func TestBuildPaginationClamps(t *testing.T) {
	b := NewPublicBuilder(12, 100)

	cases := []struct {
		name        string
		page        string
		perPage     string
		wantPage    int
		wantPerPage int
	}{
		{"zero page", "0", "", 1, 12},
		{"negative page", "-4", "", 1, 12},
		{"garbage page", "abc", "", 1, 12},
		{"per page over cap", "2", "1000", 2, 100},
		{"per page zero", "1", "0", 1, 1},
		{"explicit", "3", "10", 3, 10},
		{"page past int range", "9223372036854775807", "12", math.MaxInt32/12 + 1, 12},
		{"page overflowing int", "99999999999999999999", "12", 1, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := b.Build(Params{Page: tc.page, PerPage: tc.perPage})
			require.NoError(t, err)
			assert.Equal(t, tc.wantPage, spec.Page)
			assert.Equal(t, tc.wantPerPage, spec.PerPage)
			assert.Equal(t, (tc.wantPage-1)*tc.wantPerPage, spec.Offset)
			assert.GreaterOrEqual(t, spec.Offset, 0)
			assert.LessOrEqual(t, spec.Offset, math.MaxInt32)
		})
	}
}

func TestBuildFixedPerPageIgnoresCaller(t *testing.T) {
	spec, err := NewAdminBuilder(10).Build(Params{PerPage: "50", Page: "2"})
	require.NoError(t, err)
	assert.Equal(t, 10, spec.PerPage)
	assert.Equal(t, 10, spec.Offset)
	assert.True(t, spec.Filter.SearchPersonal)
}

func TestWithStatusOverrides(t *testing.T) {
	spec, err := NewPublicBuilder(12, 100).Build(Params{Status: "rejected"})
	require.NoError(t, err)

	approved := spec.WithStatus(domain.SubmissionStatusApproved)
	assert.Equal(t, domain.SubmissionStatusApproved, *approved.Filter.Status)
	assert.Equal(t, domain.SubmissionStatusRejected, *spec.Filter.Status)
}

func TestCacheKeyIsStable(t *testing.T) {
	b := NewPublicBuilder(12, 100)
	a, err := b.Build(Params{Shop: "s", Category: "socks", Sort: "az"})
	require.NoError(t, err)
	c, err := b.Build(Params{Shop: "s", Category: "SOCKS", Sort: "az"})
	require.NoError(t, err)
	d, err := b.Build(Params{Shop: "s", Category: "SOCKS", Sort: "za"})
	require.NoError(t, err)

	assert.Equal(t, a.CacheKey(), c.CacheKey())
	assert.NotEqual(t, a.CacheKey(), d.CacheKey())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 3, TotalPages(25, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}
