package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-gallery/internal/query"
)

// listingParams reads the allow-listed listing parameters. "query" is accepted as an
// alias of "search".
func listingParams(c *fiber.Ctx) query.Params {
	search := c.Query("search")
	if search == "" {
		search = c.Query("query")
	}
	return query.Params{
		Shop:          c.Query("shop"),
		Search:        search,
		Status:        c.Query("status"),
		Category:      c.Query("category"),
		Sort:          c.Query("sort"),
		SortKey:       c.Query("sortKey"),
		SortDirection: c.Query("sortDirection"),
		Page:          c.Query("page"),
		PerPage:       c.Query("perPage"),
	}
}
