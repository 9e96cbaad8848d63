package store

import (
	"fmt"
	"strings"

	"github.com/merchview/catalog/internal/catalog"
)

// WhereBuilder accumulates parameterized WHERE conditions. Column names are
// always literals from this package, never user input; only values travel
// as query arguments.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first argument is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends an equality condition. Empty values are skipped.
func (wb *WhereBuilder) Add(column, value string) {
	if value == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", column, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddBool appends an equality condition on a boolean column. Nil is
// skipped.
func (wb *WhereBuilder) AddBool(column string, value *bool) {
	if value == nil {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", column, wb.argIndex))
	wb.args = append(wb.args, *value)
	wb.argIndex++
}

// AddFlag appends a bare boolean column condition when set is true. Used
// for badge filters, where false means "do not constrain".
func (wb *WhereBuilder) AddFlag(column string, set bool) {
	if !set {
		return
	}
	wb.conditions = append(wb.conditions, column)
}

// AddSearch appends the search condition for the given field. Identifier
// and parent SKU match exactly; name and variation SKU match as
// case-insensitive substrings.
func (wb *WhereBuilder) AddSearch(field catalog.SearchField, query string) {
	if query == "" {
		return
	}
	switch field {
	case catalog.SearchID:
		wb.Add("p.id", query)
	case catalog.SearchName:
		wb.conditions = append(wb.conditions, fmt.Sprintf("p.name ILIKE '%%' || $%d || '%%'", wb.argIndex))
		wb.args = append(wb.args, query)
		wb.argIndex++
	case catalog.SearchSKU:
		wb.conditions = append(wb.conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM variations sv WHERE sv.product_id = p.id AND sv.sku ILIKE '%%' || $%d || '%%')",
			wb.argIndex))
		wb.args = append(wb.args, query)
		wb.argIndex++
	case catalog.SearchParentSKU:
		wb.Add("p.sku", query)
	}
}

// AddRequest appends every condition a fetch descriptor carries.
func (wb *WhereBuilder) AddRequest(req catalog.Request) {
	wb.AddSearch(req.SearchField, req.Query)
	if req.State != nil {
		wb.Add("p.listing_state", string(*req.State))
	}
	wb.AddBool("p.enabled", req.Enabled)
	wb.AddFlag("p.has_brand", req.Badges.Branded)
	wb.AddFlag("p.is_express_enabled", req.Badges.Express)
	wb.AddFlag("p.is_promoted", req.Badges.Promoted)
	wb.AddFlag("p.has_clean_image", req.Badges.CleanImage)
	wb.AddFlag("p.is_return_enrolled", req.Badges.ReturnEnrolled)
}

// Build returns the WHERE clause (with a leading space) and its arguments,
// or an empty string and nil when no conditions were added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex returns the placeholder index the next argument would take.
// Used when appending LIMIT and OFFSET after the WHERE clause.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}
