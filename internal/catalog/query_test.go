package catalog

import "testing"

// ============================================================================
// Request Derivation Tests
// ============================================================================

func TestRequestDefaults(t *testing.T) {
	q := defaultQueryInputs()
	req := q.request("wh-1")

	if req.Limit != DefaultPageLimit {
		t.Errorf("Limit = %d, want %d", req.Limit, DefaultPageLimit)
	}
	if req.Offset != 0 {
		t.Errorf("Offset = %d, want 0", req.Offset)
	}
	if req.Sort != defaultSort {
		t.Errorf("Sort = %+v, want %+v", req.Sort, defaultSort)
	}
	if req.Query != "" || req.SearchField != "" {
		t.Errorf("blank search should omit query, got %q/%q", req.Query, req.SearchField)
	}
	if req.WarehouseID != "wh-1" {
		t.Errorf("WarehouseID = %q, want wh-1", req.WarehouseID)
	}

	// Default field is the identifier, which suspends all filters.
	if req.State != nil {
		t.Errorf("State = %v, want nil while identifier search is selected", *req.State)
	}
	if req.Enabled != nil {
		t.Errorf("Enabled = %v, want nil while identifier search is selected", *req.Enabled)
	}
}

func TestRequestFiltersApplyForNonIDFields(t *testing.T) {
	q := defaultQueryInputs()
	q.searchField = SearchName
	q.badges = BadgeFilters{Branded: true}
	req := q.request("wh-1")

	if req.State == nil || *req.State != StateActive {
		t.Errorf("State = %v, want ACTIVE", req.State)
	}
	if req.Enabled == nil || !*req.Enabled {
		t.Errorf("Enabled = %v, want true", req.Enabled)
	}
	if !req.Badges.Branded {
		t.Error("Badges.Branded should carry through when filters apply")
	}
}

func TestRequestFiltersSuspendedForIDField(t *testing.T) {
	q := defaultQueryInputs()
	q.searchField = SearchID
	q.stateFilter = StateSelection(StateMerchantInactive)
	q.enabledFilter = SelectDisabled
	q.badges = BadgeFilters{Express: true, Promoted: true}
	req := q.request("wh-1")

	if req.State != nil {
		t.Errorf("State = %v, want nil", *req.State)
	}
	if req.Enabled != nil {
		t.Errorf("Enabled = %v, want nil", *req.Enabled)
	}
	if req.Badges.any() {
		t.Errorf("Badges = %+v, want none", req.Badges)
	}
}

func TestRequestSearchClause(t *testing.T) {
	tests := []struct {
		name      string
		committed string
		field     SearchField
		wantQuery string
		wantField SearchField
	}{
		{"blank omits clause", "", SearchSKU, "", ""},
		{"whitespace only omits clause", "   ", SearchSKU, "", ""},
		{"term is trimmed", "  hat  ", SearchName, "hat", SearchName},
		{"id search carries field", "abc123", SearchID, "abc123", SearchID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := defaultQueryInputs()
			q.searchField = tt.field
			q.committed = tt.committed
			req := q.request("wh-1")
			if req.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", req.Query, tt.wantQuery)
			}
			if req.SearchField != tt.wantField {
				t.Errorf("SearchField = %q, want %q", req.SearchField, tt.wantField)
			}
		})
	}
}

func TestRequestSortFallback(t *testing.T) {
	tests := []struct {
		name string
		sort *Sort
		want Sort
	}{
		{"nil sort falls back", nil, defaultSort},
		{"not-applied order falls back", &Sort{Field: SortSales, Order: OrderNotApplied}, defaultSort},
		{"applied sort wins", &Sort{Field: SortSales, Order: OrderAsc}, Sort{Field: SortSales, Order: OrderAsc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := defaultQueryInputs()
			q.sort = tt.sort
			if got := q.request("wh-1").Sort; got != tt.want {
				t.Errorf("Sort = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequestEnabledSelections(t *testing.T) {
	tests := []struct {
		name string
		sel  EnabledSelection
		want *bool
	}{
		{"all", SelectAllEnabled, nil},
		{"enabled", SelectEnabled, boolPtr(true)},
		{"disabled", SelectDisabled, boolPtr(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := defaultQueryInputs()
			q.searchField = SearchName
			q.enabledFilter = tt.sel
			got := q.request("wh-1").Enabled
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Enabled = %v, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("Enabled = %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestRequestStateAll(t *testing.T) {
	q := defaultQueryInputs()
	q.searchField = SearchName
	q.stateFilter = SelectAllStates
	if got := q.request("wh-1").State; got != nil {
		t.Errorf("State = %v, want nil for ALL", *got)
	}
}

func boolPtr(b bool) *bool { return &b }
