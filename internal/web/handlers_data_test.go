package web

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/merchview/catalog/internal/catalog"
)

func exportURL(params url.Values) string {
	return "/api/export?" + params.Encode()
}

func TestExportRequest(t *testing.T) {
	tests := []struct {
		name    string
		params  url.Values
		wantErr bool
		check   func(t *testing.T, req catalog.Request)
	}{
		{
			name:    "missing warehouse",
			params:  url.Values{"query": {"hat"}},
			wantErr: true,
		},
		{
			name:   "defaults",
			params: url.Values{"warehouse_id": {"wh-1"}},
			check: func(t *testing.T, req catalog.Request) {
				if req.WarehouseID != "wh-1" {
					t.Errorf("WarehouseID = %q, want wh-1", req.WarehouseID)
				}
				if req.Query != "" || req.State != nil || req.Enabled != nil {
					t.Errorf("unconstrained request expected, got %+v", req)
				}
				if req.Sort.Field != catalog.SortLastUpdate || req.Sort.Order != catalog.OrderDesc {
					t.Errorf("Sort = %+v, want last update desc", req.Sort)
				}
			},
		},
		{
			name: "name search with filters",
			params: url.Values{
				"warehouse_id": {"wh-1"},
				"query":        {"hat"},
				"field":        {string(catalog.SearchName)},
				"state":        {string(catalog.StateActive)},
				"enabled":      {"TRUE"},
			},
			check: func(t *testing.T, req catalog.Request) {
				if req.Query != "hat" || req.SearchField != catalog.SearchName {
					t.Errorf("search = %q/%q, want hat/NAME", req.Query, req.SearchField)
				}
				if req.State == nil || *req.State != catalog.StateActive {
					t.Errorf("State = %v, want ACTIVE", req.State)
				}
				if req.Enabled == nil || !*req.Enabled {
					t.Errorf("Enabled = %v, want true", req.Enabled)
				}
			},
		},
		{
			name:   "blank field defaults to name",
			params: url.Values{"warehouse_id": {"wh-1"}, "query": {"hat"}},
			check: func(t *testing.T, req catalog.Request) {
				if req.SearchField != catalog.SearchName {
					t.Errorf("SearchField = %q, want NAME", req.SearchField)
				}
			},
		},
		{
			name: "id search suspends filters",
			params: url.Values{
				"warehouse_id": {"wh-1"},
				"query":        {"64a1f2"},
				"field":        {string(catalog.SearchID)},
				"state":        {string(catalog.StateActive)},
				"enabled":      {"FALSE"},
			},
			check: func(t *testing.T, req catalog.Request) {
				if req.SearchField != catalog.SearchID {
					t.Errorf("SearchField = %q, want ID", req.SearchField)
				}
				if req.State != nil {
					t.Errorf("State = %v, want nil while searching by identifier", req.State)
				}
				if req.Enabled != nil {
					t.Errorf("Enabled = %v, want nil while searching by identifier", req.Enabled)
				}
			},
		},
		{
			name: "unknown search field",
			params: url.Values{
				"warehouse_id": {"wh-1"},
				"query":        {"hat"},
				"field":        {"COLOR"},
			},
			wantErr: true,
		},
		{
			name: "unknown listing state",
			params: url.Values{
				"warehouse_id": {"wh-1"},
				"state":        {"DORMANT"},
			},
			wantErr: true,
		},
		{
			name: "bad enabled selector",
			params: url.Values{
				"warehouse_id": {"wh-1"},
				"enabled":      {"MAYBE"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", exportURL(tt.params), nil)
			req, err := exportRequest(r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("exportRequest() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("exportRequest() failed: %v", err)
			}
			tt.check(t, req)
		})
	}
}
