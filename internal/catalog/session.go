package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Page is one fetched page of products. HasMore reports whether another
// page exists past this one.
type Page struct {
	Products []*Product
	HasMore  bool
}

// SubmitResult is the sink's verdict on one batch. OK false with a Message
// is a business rejection (nothing was applied); transport failures come
// back as errors instead.
type SubmitResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// DataSource supplies catalog reads. Implementations must be safe for
// concurrent use.
type DataSource interface {
	// FetchRows returns the page of products described by req, each with
	// its first CollapsedVariationsShown variations populated.
	FetchRows(ctx context.Context, req Request) (Page, error)

	// FetchCount returns the number of products matching req's filters.
	FetchCount(ctx context.Context, req Request) (int, error)

	// FetchTotalCount returns the merchant's unfiltered product count.
	FetchTotalCount(ctx context.Context) (int, error)

	// FetchVariations returns up to limit variations of one product.
	FetchVariations(ctx context.Context, productID string, limit int) ([]*Variation, error)
}

// MutationSink applies submitted batches. Each batch is atomic: it is
// applied in full or not at all.
type MutationSink interface {
	SubmitChanges(ctx context.Context, batch Batch) (SubmitResult, error)
}

// SessionParams configures a new Session.
type SessionParams struct {
	Source         DataSource
	Sink           MutationSink
	Warehouse      Warehouse
	Currency       string
	DebounceDelay  time.Duration
	CollapsedShown int
	Logger         *slog.Logger
}

// Session is one merchant's live view of the catalog table: the committed
// query state, the current page and its pristine baseline, the pending-edit
// cache, expansion state, and the submission flag. All methods are safe for
// concurrent use; a single mutex serializes state access while fetches and
// submissions run outside it.
type Session struct {
	mu        sync.Mutex
	src       DataSource
	sink      MutationSink
	warehouse Warehouse
	currency  string
	collapsed int
	log       *slog.Logger
	deb       *debouncer

	query        queryInputs
	searchText   string
	hasCommitted bool
	dirty        bool
	gen          uint64
	loaded       bool

	products   []*Product
	baseline   []*Product
	hasMore    bool
	count      int
	totalCount int

	edits *EditSet

	expanded map[string]bool
	loads    map[string]uint64
	loadSeq  uint64

	submitting bool
}

// NewSession builds a session with the default query state: active, enabled
// products sorted by most recent update, first page. Call Close when done
// to release the search timer.
func NewSession(p SessionParams) *Session {
	if p.CollapsedShown <= 0 {
		p.CollapsedShown = CollapsedVariationsShown
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	s := &Session{
		src:       p.Source,
		sink:      p.Sink,
		warehouse: p.Warehouse,
		currency:  p.Currency,
		collapsed: p.CollapsedShown,
		log:       p.Logger,
		query:     defaultQueryInputs(),
		edits:     NewEditSet(),
		expanded:  make(map[string]bool),
		loads:     make(map[string]uint64),
	}
	s.deb = newDebouncer(p.DebounceDelay, s.commitSearch)
	return s
}

// Close releases the session's timers. Pending debounced commits are
// dropped.
func (s *Session) Close() {
	s.deb.stop()
}

// Warehouse returns the warehouse this session's inventory cells are
// scoped to.
func (s *Session) Warehouse() Warehouse {
	return s.warehouse
}

// ============================================================================
// Query state
// ============================================================================

// invalidateLocked marks the loaded page stale after a query-state change.
// Bumping the generation makes any fetch already in flight discard its
// result instead of installing a page for the old descriptor.
func (s *Session) invalidateLocked() {
	s.dirty = true
	s.gen++
}

// SetSearchText records a keystroke in the search box. The term is
// committed, and the page reset, only after input has been quiet for the
// debounce delay.
func (s *Session) SetSearchText(text string) {
	s.mu.Lock()
	s.searchText = text
	s.mu.Unlock()
	s.deb.input(text)
}

// FlushSearch commits any pending search text immediately.
func (s *Session) FlushSearch() {
	s.deb.flush()
}

// commitSearch is the debounce callback. A committed term that differs
// from the previous one resets pagination to the first page; the very
// first commit of an empty term is not a change and resets nothing.
func (s *Session) commitSearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.query.committed, s.hasCommitted
	s.hasCommitted = true
	if had && prev == text {
		return
	}
	if !had && text == "" {
		return
	}
	s.query.committed = text
	s.query.offset = 0
	s.invalidateLocked()
}

// SetSearchField switches which column the search term matches. Switching
// to the identifier field suspends the other filters; any selection change
// returns to the first page.
func (s *Session) SetSearchField(f SearchField) error {
	switch f {
	case SearchID, SearchName, SearchSKU, SearchParentSKU:
	default:
		return fmt.Errorf("unknown search field %q", f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.searchField == f {
		return nil
	}
	s.query.searchField = f
	s.query.offset = 0
	s.invalidateLocked()
	return nil
}

// SetOffset moves to a different page offset.
func (s *Session) SetOffset(offset int) {
	if offset < 0 {
		offset = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.offset == offset {
		return
	}
	s.query.offset = offset
	s.invalidateLocked()
}

// SetLimit changes the page size and returns to the first page.
func (s *Session) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.limit == limit {
		return
	}
	s.query.limit = limit
	s.query.offset = 0
	s.invalidateLocked()
}

// SetSort applies a column sort. A nil sort, or one with the not-applied
// order, falls back to most recently updated first.
func (s *Session) SetSort(sort *Sort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.sort = sort
	s.invalidateLocked()
}

// SetStateFilter restricts the listing to one lifecycle state, or all.
func (s *Session) SetStateFilter(sel StateSelection) error {
	if sel != SelectAllStates && !ListingState(sel).Valid() {
		return fmt.Errorf("unknown listing state %q", sel)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.stateFilter = sel
	s.query.offset = 0
	s.invalidateLocked()
	return nil
}

// SetEnabledFilter restricts the listing by enabled state.
func (s *Session) SetEnabledFilter(sel EnabledSelection) error {
	switch sel {
	case SelectAllEnabled, SelectEnabled, SelectDisabled:
	default:
		return fmt.Errorf("unknown enabled filter %q", sel)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.enabledFilter = sel
	s.query.offset = 0
	s.invalidateLocked()
	return nil
}

// SetBadgeFilters restricts the listing to products holding the selected
// badges.
func (s *Session) SetBadgeFilters(b BadgeFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.badges = b
	s.query.offset = 0
	s.invalidateLocked()
}

// ResetFilters returns the state, enabled, and badge filters to their
// defaults.
func (s *Session) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.stateFilter = StateSelection(StateActive)
	s.query.enabledFilter = SelectEnabled
	s.query.badges = BadgeFilters{}
	s.query.offset = 0
	s.invalidateLocked()
}

// FiltersEnabled reports whether the filter panel currently applies.
func (s *Session) FiltersEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.filtersEnabled()
}

// Request returns the fetch descriptor derived from the committed query
// state.
func (s *Session) Request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.request(s.warehouse.ID)
}

// ============================================================================
// Fetching
// ============================================================================

// Sync fetches the current page if query state changed since the last
// fetch, or if nothing has been fetched yet. It is the read path's way of
// ensuring the view is current without refetching on every poll.
func (s *Session) Sync(ctx context.Context) error {
	s.mu.Lock()
	if s.loaded && !s.dirty {
		s.mu.Unlock()
		return nil
	}
	req := s.query.request(s.warehouse.ID)
	gen := s.gen
	s.mu.Unlock()
	return s.fetchAndApply(ctx, req, gen)
}

// Refresh unconditionally refetches the page, the filtered count, and the
// total count.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	req := s.query.request(s.warehouse.ID)
	gen := s.gen
	s.mu.Unlock()
	return s.fetchAndApply(ctx, req, gen)
}

// fetchAndApply runs the three reads concurrently and installs the results.
// Failure leaves the previous page and the edit cache untouched. A result
// whose generation no longer matches is dropped: the query state changed
// while the fetch ran, the page would describe a descriptor nobody holds
// anymore, and the session stays dirty so the next Sync fetches the
// current one.
func (s *Session) fetchAndApply(ctx context.Context, req Request, gen uint64) error {
	var (
		page  Page
		count int
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.src.FetchRows(gctx, req)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.src.FetchCount(gctx, req)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.src.FetchTotalCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fetch catalog page: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.products = page.Products
	s.baseline = make([]*Product, len(page.Products))
	for i, p := range page.Products {
		s.baseline[i] = p.Clone()
	}
	s.hasMore = page.HasMore
	s.count = count
	s.totalCount = total
	s.expanded = make(map[string]bool)
	s.loads = make(map[string]uint64)
	s.loaded = true
	s.dirty = false
	return nil
}

// Counts returns the filtered and unfiltered product counts from the last
// fetch.
func (s *Session) Counts() (count, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, s.totalCount
}

// HasMore reports whether a page exists past the current offset.
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// ============================================================================
// Rows
// ============================================================================

type expandView struct {
	expanded map[string]bool
	loads    map[string]uint64
}

func (ev expandView) isExpanded(id string) bool { return ev.expanded[id] }
func (ev expandView) isLoading(id string) bool  { _, ok := ev.loads[id]; return ok }

// Rows flattens the current page into the ordered row list. Returned rows
// reference immutable product snapshots; later session mutations swap
// snapshots rather than editing them in place, so callers may render the
// slice without holding any lock.
func (s *Session) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildRows(s.products, expandView{expanded: s.expanded, loads: s.loads}, s.collapsed)
}

// ============================================================================
// Staging edits
// ============================================================================

// editableVariation looks up the variation and enforces the staging preconditions:
// no edits mid-submission, no edits to vanished rows, no edits to removed
// listings.
func (s *Session) editableVariation(variationID string) (*Product, *Variation, error) {
	if s.submitting {
		return nil, nil, ErrSubmitInFlight
	}
	for _, p := range s.products {
		if v := p.Variation(variationID); v != nil {
			if p.ListingState.Removed() {
				return nil, nil, ErrListingRemoved
			}
			return p, v, nil
		}
	}
	return nil, nil, ErrRowNotFound
}

func (s *Session) editableProduct(productID string) (*Product, error) {
	if s.submitting {
		return nil, ErrSubmitInFlight
	}
	for _, p := range s.products {
		if p.ID == productID {
			if p.ListingState.Removed() {
				return nil, ErrListingRemoved
			}
			return p, nil
		}
	}
	return nil, ErrRowNotFound
}

// StagePrice stages a price override for a variation on the current page.
// A nil amount clears the cell, which blocks submission until resolved.
func (s *Session) StagePrice(variationID string, amount *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, v, err := s.editableVariation(variationID)
	if err != nil {
		return err
	}
	s.edits.SetPrice(v, amount)
	return nil
}

// StageInventory stages a stock override for a variation in the session's
// warehouse. A nil count clears the cell, meaning no override.
func (s *Session) StageInventory(variationID string, count *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, v, err := s.editableVariation(variationID)
	if err != nil {
		return err
	}
	s.edits.SetInventory(v, s.warehouse.ID, count)
	return nil
}

// StageProductEnabled stages a product on or off, cascading to its fetched
// variations.
func (s *Session) StageProductEnabled(productID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.editableProduct(productID)
	if err != nil {
		return err
	}
	if enabled {
		s.edits.EnableProduct(p)
	} else {
		s.edits.DisableProduct(p)
	}
	return nil
}

// StageVariationEnabled stages a variation on or off, with the product
// following per the cascade rules.
func (s *Session) StageVariationEnabled(variationID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, v, err := s.editableVariation(variationID)
	if err != nil {
		return err
	}
	if enabled {
		s.edits.EnableVariation(p, v)
	} else {
		s.edits.DisableVariation(p, v)
	}
	return nil
}

// DiscardEdits drops every staged change and restores the page to its
// fetched baseline.
func (s *Session) DiscardEdits() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmitInFlight
	}
	s.edits.Clear()
	s.restoreBaselineLocked()
	return nil
}

// restoreBaselineLocked reinstalls pristine clones of the fetched page and
// collapses everything. Idempotent.
func (s *Session) restoreBaselineLocked() {
	s.products = make([]*Product, len(s.baseline))
	for i, p := range s.baseline {
		s.products[i] = p.Clone()
	}
	s.expanded = make(map[string]bool)
	s.loads = make(map[string]uint64)
}

// NumberOfChanges returns the staged entry count shown on the submit
// control.
func (s *Session) NumberOfChanges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edits.Count()
}

// CanSubmit reports whether a submission would be accepted right now.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.submitting && s.edits.CanSubmit()
}

// CellErrors lists invalid staged cells for inline display.
func (s *Session) CellErrors() []CellError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edits.Errors()
}

// Submitting reports whether a submission is in flight.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// ============================================================================
// Submission
// ============================================================================

// Submit sends the staged edits to the sink and, on success, clears the
// cache, collapses expansion, and refetches the page and both counts.
//
// A business rejection returns the sink's result with a nil error and
// keeps the cache intact so the merchant can correct and resubmit. A
// transport error does the same with a non-nil error. Either way the
// submitting flag is cleared; a failed refetch after a successful save
// also clears it, logs, and leaves the session dirty so the next Sync
// retries the fetch.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return SubmitResult{}, ErrSubmitInFlight
	}
	if !s.edits.CanSubmit() {
		s.mu.Unlock()
		return SubmitResult{}, ErrNothingToSubmit
	}
	batches := s.edits.BuildBatches(s.warehouse.ID, s.currency)
	req := s.query.request(s.warehouse.ID)
	gen := s.gen
	changes := s.edits.Count()
	s.submitting = true
	s.mu.Unlock()

	fail := func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}

	for _, b := range batches {
		res, err := s.sink.SubmitChanges(ctx, b)
		if err != nil {
			fail()
			return SubmitResult{}, fmt.Errorf("submit catalog changes: %w", err)
		}
		if !res.OK {
			fail()
			if res.Message == "" {
				res.Message = "your changes could not be saved"
			}
			return res, nil
		}
	}

	s.log.Info("catalog changes submitted",
		"warehouse_id", s.warehouse.ID,
		"batches", len(batches),
		"changes", changes,
	)

	s.mu.Lock()
	s.edits.Clear()
	s.expanded = make(map[string]bool)
	s.loads = make(map[string]uint64)
	s.mu.Unlock()

	err := s.fetchAndApply(ctx, req, gen)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.dirty = true
	}
	s.mu.Unlock()

	if err != nil {
		// The save itself landed; the view is just stale until the next
		// successful fetch.
		s.log.Warn("refresh after submit failed", "error", err)
	}
	return SubmitResult{OK: true}, nil
}

// ============================================================================
// Variation expansion
// ============================================================================

// ToggleExpansion expands or collapses one product's variation list.
// Expanding a product whose variations are not all fetched loads the full
// list; collapsing while a load is in flight discards the result when it
// lands. Loads for different products are independent.
func (s *Session) ToggleExpansion(ctx context.Context, productID string) error {
	s.mu.Lock()
	idx := s.productIndexLocked(productID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrRowNotFound
	}
	p := s.products[idx]
	if s.expanded[productID] {
		delete(s.expanded, productID)
		delete(s.loads, productID)
		s.mu.Unlock()
		return nil
	}
	s.expanded[productID] = true
	if len(p.Variations) >= p.VariationCount {
		s.mu.Unlock()
		return nil
	}
	s.loadSeq++
	seq := s.loadSeq
	s.loads[productID] = seq
	want := p.VariationCount
	s.mu.Unlock()

	vars, err := s.src.FetchVariations(ctx, productID, want)

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.loads[productID]; !ok || cur != seq {
		// Collapsed or superseded while the fetch ran; drop the result.
		return nil
	}
	delete(s.loads, productID)
	if err != nil {
		delete(s.expanded, productID)
		return fmt.Errorf("load variations for product %s: %w", productID, err)
	}
	idx = s.productIndexLocked(productID)
	if idx < 0 {
		return nil
	}
	cp := s.products[idx].Clone()
	cp.Variations = vars
	s.products[idx] = cp
	return nil
}

// Expanded reports whether a product is currently expanded.
func (s *Session) Expanded(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[productID]
}

func (s *Session) productIndexLocked(productID string) int {
	for i, p := range s.products {
		if p.ID == productID {
			return i
		}
	}
	return -1
}
