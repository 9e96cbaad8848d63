package catalog

import (
	"strings"
	"time"
)

// Defaults for a freshly opened catalog view.
const (
	DefaultPageLimit  = 10
	DefaultSearchWait = 800 * time.Millisecond
)

// SearchField selects which column a search term matches against.
type SearchField string

const (
	SearchID        SearchField = "ID"
	SearchName      SearchField = "NAME"
	SearchSKU       SearchField = "SKU"
	SearchParentSKU SearchField = "PARENT_SKU"
)

// SortField is a sortable column of the table.
type SortField string

const (
	SortSales      SortField = "SALES"
	SortLastUpdate SortField = "LAST_UPDATE"
)

// SortOrder is a sort direction. The empty value means the column header is
// in its neutral, not-applied position.
type SortOrder string

const (
	OrderNotApplied SortOrder = ""
	OrderAsc        SortOrder = "ASC"
	OrderDesc       SortOrder = "DESC"
)

// Sort pairs a column with a direction.
type Sort struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// defaultSort is applied whenever the user has no effective sort selected.
var defaultSort = Sort{Field: SortLastUpdate, Order: OrderDesc}

// StateSelection is the listing-state filter control: a concrete state or
// SelectAll to disable the filter.
type StateSelection string

const SelectAllStates StateSelection = "ALL"

// EnabledSelection is the enabled filter control.
type EnabledSelection string

const (
	SelectAllEnabled EnabledSelection = "ALL"
	SelectEnabled    EnabledSelection = "TRUE"
	SelectDisabled   EnabledSelection = "FALSE"
)

// BadgeFilters selects which badge-holding products to restrict the listing
// to. A false field does not constrain.
type BadgeFilters struct {
	Branded        bool `json:"branded"`
	Express        bool `json:"express"`
	Promoted       bool `json:"promoted"`
	CleanImage     bool `json:"clean_image"`
	ReturnEnrolled bool `json:"return_enrolled"`
}

func (b BadgeFilters) any() bool {
	return b.Branded || b.Express || b.Promoted || b.CleanImage || b.ReturnEnrolled
}

// queryInputs is the user-manipulated query state a session holds. The
// committed search term is the debounced value, not the raw input text.
type queryInputs struct {
	searchField   SearchField
	committed     string
	offset        int
	limit         int
	sort          *Sort
	stateFilter   StateSelection
	enabledFilter EnabledSelection
	badges        BadgeFilters
}

func defaultQueryInputs() queryInputs {
	return queryInputs{
		searchField:   SearchID,
		limit:         DefaultPageLimit,
		stateFilter:   StateSelection(StateActive),
		enabledFilter: SelectEnabled,
	}
}

// filtersEnabled reports whether the filter panel applies. Searching by the
// exact product identifier already pins down a single listing, so every
// other filter is suspended while the identifier field is selected.
func (q queryInputs) filtersEnabled() bool {
	return q.searchField != SearchID
}

// Request is the fully derived fetch descriptor handed to a DataSource.
// Nil pointer fields mean "do not constrain". It is a pure function of the
// session's committed query state.
type Request struct {
	Query       string        `json:"query,omitempty"`
	SearchField SearchField   `json:"search_field,omitempty"`
	Offset      int           `json:"offset"`
	Limit       int           `json:"limit"`
	Sort        Sort          `json:"sort"`
	State       *ListingState `json:"state,omitempty"`
	Enabled     *bool         `json:"enabled,omitempty"`
	Badges      BadgeFilters  `json:"badges"`
	WarehouseID string        `json:"warehouse_id"`
}

// request derives the fetch descriptor from the committed inputs.
//
// When filters are suspended the state and enabled constraints fall back to
// all-inclusive and badge constraints drop entirely. A blank committed term
// omits the search clause altogether. An unset or not-applied sort falls
// back to most recently updated first.
func (q queryInputs) request(warehouseID string) Request {
	req := Request{
		Offset:      q.offset,
		Limit:       q.limit,
		Sort:        defaultSort,
		WarehouseID: warehouseID,
	}
	if req.Limit <= 0 {
		req.Limit = DefaultPageLimit
	}
	if q.sort != nil && q.sort.Order != OrderNotApplied {
		req.Sort = *q.sort
	}
	if term := strings.TrimSpace(q.committed); term != "" {
		req.Query = term
		req.SearchField = q.searchField
	}
	if q.filtersEnabled() {
		if q.stateFilter != SelectAllStates && q.stateFilter != "" {
			st := ListingState(q.stateFilter)
			req.State = &st
		}
		switch q.enabledFilter {
		case SelectEnabled:
			t := true
			req.Enabled = &t
		case SelectDisabled:
			f := false
			req.Enabled = &f
		}
		req.Badges = q.badges
	}
	return req
}
