package utils

import "github.com/gofiber/fiber/v2"

// maxPageSize caps how many rows a single list request can ask for.
const maxPageSize = 100

// Pagination is the normalized page window for list queries.
type Pagination struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// GetPagination reads page and limit from the query string, falling back
// to the defaults on missing or malformed values and capping the limit.
func GetPagination(c *fiber.Ctx, defaultPage, defaultLimit int) Pagination {
	page := c.QueryInt("page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
