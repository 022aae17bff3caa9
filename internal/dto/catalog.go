package dto

import "github.com/helixtrack/core/internal/utils"

// CatalogListResponse is one page of catalog entities
type CatalogListResponse[T any] struct {
	Items      []T                      `json:"items"`
	Pagination utils.PaginationResponse `json:"pagination"`
}
