package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-gallery/internal/domain"
	"github.com/spec-kit/project-gallery/internal/query"
)

func TestBuildSubmissionWhereEmpty(t *testing.T) {
	where, args := buildSubmissionWhere(query.Filter{}, 1)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildSubmissionWhereAllFilters(t *testing.T) {
	shop := "wool.myshopify.com"
	status := domain.SubmissionStatusApproved
	where, args := buildSubmissionWhere(query.Filter{
		Shop:     &shop,
		Status:   &status,
		Category: "SOCKS",
		Search:   "hat",
	}, 1)

	assert.Equal(t,
		"WHERE s.shop = $1 AND s.status = $2 AND $3 = ANY(s.categories) AND (s.project_name ILIKE $4 OR p.title ILIKE $4)",
		where)
	assert.Equal(t, []any{"wool.myshopify.com", "approved", "SOCKS", "%hat%"}, args)
}

func TestBuildSubmissionWhereSearchPersonal(t *testing.T) {
	where, args := buildSubmissionWhere(query.Filter{Search: "alice", SearchPersonal: true}, 3)

	assert.Contains(t, where, "s.first_name ILIKE $3")
	assert.Contains(t, where, "s.last_name ILIKE $3")
	assert.Contains(t, where, "s.email ILIKE $3")
	require.Len(t, args, 1)
}

func TestBuildSubmissionWhereKeepsValuesOutOfSQL(t *testing.T) {
	hostile := "x' OR 1=1 --"
	where, args := buildSubmissionWhere(query.Filter{Search: hostile, Category: hostile}, 1)

	assert.NotContains(t, where, "OR 1=1")
	assert.Contains(t, args, hostile)
}

func TestEscapeLike(t *testing.T) {
	_, args := buildSubmissionWhere(query.Filter{Search: `50%_off\`}, 1)
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}

func TestBuildOrderBy(t *testing.T) {
	cases := []struct {
		sort query.Sort
		want string
	}{
		{query.Sort{Key: query.SortByApprovedAt, Direction: query.Desc}, "ORDER BY s.approved_at DESC NULLS LAST, s.id ASC"},
		{query.Sort{Key: query.SortByApprovedAt, Direction: query.Asc}, "ORDER BY s.approved_at ASC NULLS LAST, s.id ASC"},
		{query.Sort{Key: query.SortByProjectName, Direction: query.Asc}, "ORDER BY s.project_name ASC NULLS LAST, s.id ASC"},
		{query.Sort{Key: query.SortBySubmittedAt, Direction: query.Desc}, "ORDER BY s.submitted_at DESC NULLS LAST, s.id ASC"},
		{query.Sort{Key: "email", Direction: "sideways"}, "ORDER BY s.submitted_at DESC NULLS LAST, s.id ASC"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, buildOrderBy(tc.sort))
	}
}
