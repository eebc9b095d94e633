package zoho

import (
	"net/url"
	"strconv"
	"strings"
)

// Pagination defaults applied when a list call does not specify them.
const (
	DefaultPage     = 1
	DefaultPageSize = 25
)

// SortOrder maps loose user input onto the provider's wire code for sort
// direction. Accepts case-insensitive synonyms ("a", "ascending", "d",
// "descending"); anything else — including empty input — defaults to
// ascending. Total function, no error path.
func (p Provider) SortOrder(input string) string {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "d", "desc", "descending":
		return p.SortDescending
	default:
		return p.SortAscending
	}
}

// ListOptions carries pagination, sorting, and free-form filter parameters
// for a list operation. The zero value requests the first page at the
// default size with no sorting.
type ListOptions struct {
	Page     int
	PerPage  int
	SortBy  string // column/field name; sorting params are omitted when empty
	SortDir string // raw sort-direction input, normalized via SortOrder
	Filters url.Values
}

// query renders the options as query parameters for the given provider.
// Missing pagination fields take the defaults and the page size is clamped
// to the provider maximum when one is declared.
func (o ListOptions) query(p Provider) url.Values {
	values := url.Values{}
	for key, vals := range o.Filters {
		for _, v := range vals {
			values.Add(key, v)
		}
	}

	page := o.Page
	if page < 1 {
		page = DefaultPage
	}
	perPage := o.PerPage
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if p.MaxPageSize > 0 && perPage > p.MaxPageSize {
		perPage = p.MaxPageSize
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("per_page", strconv.Itoa(perPage))

	if o.SortBy != "" {
		values.Set(p.SortByParam, o.SortBy)
		values.Set("sort_order", p.SortOrder(o.SortDir))
	}

	return values
}
