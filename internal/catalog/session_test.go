package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// ============================================================================
// Fakes
// ============================================================================

// fakeSource serves pages from a fixed product set and records fetch
// activity. pageFn, when set, overrides the default page response.
type fakeSource struct {
	mu         sync.Mutex
	products   []*Product
	total      int
	rowCalls   int
	countCalls int
	totalCalls int
	varCalls   int
	failRows   error
	lastReq    Request

	// variationsFn serves FetchVariations; nil returns the product's
	// current variations.
	variationsFn func(productID string, limit int) ([]*Variation, error)

	// blockVariations, when non-nil, is closed by the test to release an
	// in-flight FetchVariations call.
	blockVariations chan struct{}

	// blockRows does the same for FetchRows. The call is recorded before
	// it blocks.
	blockRows chan struct{}
}

func (f *fakeSource) FetchRows(ctx context.Context, req Request) (Page, error) {
	f.mu.Lock()
	f.rowCalls++
	f.lastReq = req
	fail := f.failRows
	block := f.blockRows
	products := make([]*Product, len(f.products))
	for i, p := range f.products {
		products[i] = p.Clone()
	}
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if fail != nil {
		return Page{}, fail
	}
	return Page{Products: products, HasMore: false}, nil
}

func (f *fakeSource) FetchCount(ctx context.Context, req Request) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.failRows != nil {
		return 0, f.failRows
	}
	return len(f.products), nil
}

func (f *fakeSource) FetchTotalCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalCalls++
	if f.failRows != nil {
		return 0, f.failRows
	}
	return f.total, nil
}

func (f *fakeSource) FetchVariations(ctx context.Context, productID string, limit int) ([]*Variation, error) {
	f.mu.Lock()
	f.varCalls++
	block := f.blockVariations
	fn := f.variationsFn
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if fn != nil {
		return fn(productID, limit)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == productID {
			out := make([]*Variation, 0, limit)
			for i, v := range p.Variations {
				if i >= limit {
					break
				}
				vc := *v
				out = append(out, &vc)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("product %s not found", productID)
}

func (f *fakeSource) calls() (rows, count, total int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rowCalls, f.countCalls, f.totalCalls
}

// fakeSink records submitted batches and replays scripted results.
type fakeSink struct {
	mu      sync.Mutex
	batches []Batch
	result  SubmitResult
	err     error
}

func (f *fakeSink) SubmitChanges(ctx context.Context, batch Batch) (SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	if f.err != nil {
		return SubmitResult{}, f.err
	}
	if f.result == (SubmitResult{}) {
		return SubmitResult{OK: true}, nil
	}
	return f.result, nil
}

func (f *fakeSink) submitted() []Batch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Batch(nil), f.batches...)
}

func newTestSession(t *testing.T, src *fakeSource, sink MutationSink) *Session {
	t.Helper()
	s := NewSession(SessionParams{
		Source:        src,
		Sink:          sink,
		Warehouse:     Warehouse{ID: "wh-1", CountryCode: "US", Primary: true},
		Currency:      "USD",
		DebounceDelay: 10 * time.Millisecond,
	})
	t.Cleanup(s.Close)
	return s
}

func mustSync(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() failed: %v", err)
	}
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

// ============================================================================
// Fetch and Query State Tests
// ============================================================================

func TestSyncFetchesOnce(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}, total: 40}
	s := newTestSession(t, src, &fakeSink{})

	mustSync(t, s)
	mustSync(t, s)

	rows, count, total := src.calls()
	if rows != 1 || count != 1 || total != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1 (second Sync is a no-op)", rows, count, total)
	}
	c, tot := s.Counts()
	if c != 1 || tot != 40 {
		t.Errorf("Counts() = %d/%d, want 1/40", c, tot)
	}
}

func TestQueryChangeMarksDirty(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	s.SetOffset(10)
	mustSync(t, s)

	rows, _, _ := src.calls()
	if rows != 2 {
		t.Errorf("rowCalls = %d, want 2 after offset change", rows)
	}
	src.mu.Lock()
	gotOffset := src.lastReq.Offset
	src.mu.Unlock()
	if gotOffset != 10 {
		t.Errorf("fetched offset = %d, want 10", gotOffset)
	}
}

func TestQueryChangeDuringFetchIsNotLost(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}, blockRows: block}
	s := newTestSession(t, src, &fakeSink{})

	done := make(chan error, 1)
	go func() { done <- s.Sync(context.Background()) }()
	waitFor(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.rowCalls == 1
	}, "initial fetch never started")

	// The merchant pages forward while the first fetch is still in flight.
	// Its result describes the old offset and must not satisfy the new one.
	s.SetOffset(10)
	close(block)
	if err := <-done; err != nil {
		t.Fatalf("Sync() failed: %v", err)
	}

	mustSync(t, s)
	src.mu.Lock()
	rows, gotOffset := src.rowCalls, src.lastReq.Offset
	src.mu.Unlock()
	if rows != 2 {
		t.Errorf("rowCalls = %d, want 2 (superseded fetch must not count as current)", rows)
	}
	if gotOffset != 10 {
		t.Errorf("fetched offset = %d, want 10", gotOffset)
	}
}

func TestFetchFailureKeepsPreviousPage(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(12)); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}

	src.mu.Lock()
	src.failRows = errors.New("connection refused")
	src.mu.Unlock()
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() should fail")
	}

	// The previous page and the pending edit both survive.
	if len(s.Rows()) == 0 {
		t.Error("previous page should still render")
	}
	if s.NumberOfChanges() != 1 {
		t.Errorf("NumberOfChanges() = %d, want 1", s.NumberOfChanges())
	}
}

func TestSearchDebounceCommitsOnceAndResetsOffset(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)
	s.SetOffset(20)
	mustSync(t, s)

	s.SetSearchText("h")
	s.SetSearchText("ha")
	s.SetSearchText("hat")

	waitFor(t, func() bool { return s.Request().Query == "hat" },
		"committed search never became hat")
	if got := s.Request().Offset; got != 0 {
		t.Errorf("offset = %d, want 0 after search commit", got)
	}
}

func TestFirstEmptyCommitDoesNotResetOffset(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)
	s.SetOffset(20)
	mustSync(t, s)

	s.SetSearchText("")
	s.FlushSearch()
	time.Sleep(30 * time.Millisecond)

	if got := s.Request().Offset; got != 20 {
		t.Errorf("offset = %d, want 20 (empty first commit is not a change)", got)
	}
	rows, _, _ := src.calls()
	if rows != 2 {
		t.Errorf("rowCalls = %d, want 2 (no refetch from a no-op commit)", rows)
	}
}

func TestSetSearchFieldValidation(t *testing.T) {
	s := newTestSession(t, &fakeSource{}, &fakeSink{})
	if err := s.SetSearchField("BOGUS"); err == nil {
		t.Error("unknown search field should be rejected")
	}
	if err := s.SetSearchField(SearchName); err != nil {
		t.Errorf("SetSearchField(NAME) failed: %v", err)
	}
}

// ============================================================================
// Staging Tests
// ============================================================================

func TestStageRejectsUnknownRow(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	if err := s.StagePrice("ghost", float64Ptr(5)); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("StagePrice(ghost) = %v, want ErrRowNotFound", err)
	}
	if err := s.StageProductEnabled("ghost", true); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("StageProductEnabled(ghost) = %v, want ErrRowNotFound", err)
	}
}

func TestStageRejectsRemovedListing(t *testing.T) {
	p := makeProduct("p1", 2)
	p.ListingState = StateRemovedByMerchant
	src := &fakeSource{products: []*Product{p}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(5)); !errors.Is(err, ErrListingRemoved) {
		t.Errorf("StagePrice on removed listing = %v, want ErrListingRemoved", err)
	}
	if err := s.StageVariationEnabled("p1-va", false); !errors.Is(err, ErrListingRemoved) {
		t.Errorf("StageVariationEnabled on removed listing = %v, want ErrListingRemoved", err)
	}
	if s.NumberOfChanges() != 0 {
		t.Errorf("NumberOfChanges() = %d, want 0", s.NumberOfChanges())
	}
}

func TestDiscardEditsRestoresBaseline(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 7)}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(99)); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}
	if err := s.ToggleExpansion(context.Background(), "p1"); err != nil {
		t.Fatalf("ToggleExpansion() failed: %v", err)
	}

	if err := s.DiscardEdits(); err != nil {
		t.Fatalf("DiscardEdits() failed: %v", err)
	}
	if s.NumberOfChanges() != 0 {
		t.Errorf("NumberOfChanges() = %d, want 0", s.NumberOfChanges())
	}
	if s.Expanded("p1") {
		t.Error("expansion should reset on discard")
	}
}

// ============================================================================
// Submission Tests
// ============================================================================

func TestSubmitSuccessClearsCacheAndRefetches(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}, total: 12}
	sink := &fakeSink{}
	s := newTestSession(t, src, sink)
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(15)); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}

	res, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if !res.OK {
		t.Fatalf("Submit() result = %+v, want OK", res)
	}
	if s.NumberOfChanges() != 0 {
		t.Errorf("NumberOfChanges() = %d, want 0 after success", s.NumberOfChanges())
	}
	if s.Submitting() {
		t.Error("submitting flag should clear after success")
	}

	// Page, filtered count, and total count all refetched.
	rows, count, total := src.calls()
	if rows != 2 || count != 2 || total != 2 {
		t.Errorf("calls = %d/%d/%d, want 2/2/2", rows, count, total)
	}

	batches := sink.submitted()
	if len(batches) != 1 {
		t.Fatalf("submitted %d batches, want 1", len(batches))
	}
	ch := batches[0].Changes[0].Variations[0]
	if ch.VariationID != "p1-va" || ch.Price == nil || ch.Price.Amount != 15 {
		t.Errorf("submitted change = %+v, want price 15 for p1-va", ch)
	}
}

func TestSubmitBusinessFailureRetainsCache(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	sink := &fakeSink{result: SubmitResult{OK: false, Message: "price rejected"}}
	s := newTestSession(t, src, sink)
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(15)); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}

	res, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() returned transport error: %v", err)
	}
	if res.OK || res.Message != "price rejected" {
		t.Errorf("result = %+v, want rejection with message", res)
	}
	if s.NumberOfChanges() != 1 {
		t.Errorf("NumberOfChanges() = %d, want 1 (cache retained)", s.NumberOfChanges())
	}
	if s.Submitting() {
		t.Error("submitting flag should clear after rejection")
	}

	// No refetch happened.
	rows, _, _ := src.calls()
	if rows != 1 {
		t.Errorf("rowCalls = %d, want 1", rows)
	}
}

func TestSubmitTransportErrorRetainsCache(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	sink := &fakeSink{err: errors.New("connection reset")}
	s := newTestSession(t, src, sink)
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(15)); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}

	if _, err := s.Submit(context.Background()); err == nil {
		t.Fatal("Submit() should surface the transport error")
	}
	if s.NumberOfChanges() != 1 {
		t.Errorf("NumberOfChanges() = %d, want 1", s.NumberOfChanges())
	}
	if s.Submitting() {
		t.Error("submitting flag should clear after error")
	}
}

func TestSubmitRejectsWhenNothingStaged(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrNothingToSubmit) {
		t.Errorf("Submit() = %v, want ErrNothingToSubmit", err)
	}
}

func TestSubmitRejectsInvalidCells(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	if err := s.StagePrice("p1-va", nil); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrNothingToSubmit) {
		t.Errorf("Submit() with cleared price = %v, want ErrNothingToSubmit", err)
	}
}

func TestSubmitRefetchFailureStillClearsFlag(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	sink := &fakeSink{}
	s := newTestSession(t, src, sink)
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(15)); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}

	// The save lands but the follow-up refetch fails.
	src.mu.Lock()
	src.failRows = errors.New("timeout")
	src.mu.Unlock()

	res, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() = %v, the save itself succeeded", err)
	}
	if !res.OK {
		t.Errorf("result = %+v, want OK", res)
	}
	if s.Submitting() {
		t.Error("submitting flag must clear even when the refetch fails")
	}

	// The session is dirty, so the next Sync retries the fetch.
	src.mu.Lock()
	src.failRows = nil
	src.mu.Unlock()
	mustSync(t, s)
	rows, _, _ := src.calls()
	if rows != 3 {
		t.Errorf("rowCalls = %d, want 3 (initial, failed refetch, retry)", rows)
	}
}

func TestStagingBlockedDuringSubmit(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}}
	release := make(chan struct{})
	sink := &blockingSink{release: release}
	s := newTestSession(t, src, sink)
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(15)); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	waitFor(t, s.Submitting, "submission never started")

	if err := s.StagePrice("p1-vb", float64Ptr(9)); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("StagePrice() during submit = %v, want ErrSubmitInFlight", err)
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second Submit() = %v, want ErrSubmitInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
}

// blockingSink holds every submission until release is closed.
type blockingSink struct {
	release chan struct{}
}

func (b *blockingSink) SubmitChanges(ctx context.Context, batch Batch) (SubmitResult, error) {
	<-b.release
	return SubmitResult{OK: true}, nil
}

// ============================================================================
// Expansion Tests
// ============================================================================

func TestToggleExpansionLoadsAllVariations(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 8)}}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	// Collapsed page only carries the first few variations.
	src.mu.Lock()
	src.products[0].Variations = src.products[0].Variations[:CollapsedVariationsShown]
	src.mu.Unlock()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	if err := s.ToggleExpansion(context.Background(), "p1"); err != nil {
		t.Fatalf("ToggleExpansion() failed: %v", err)
	}
	if !s.Expanded("p1") {
		t.Fatal("product should be expanded")
	}

	varRows := 0
	for _, r := range s.Rows() {
		if r.Kind() == RowKindVariation {
			varRows++
		}
	}
	if varRows != 5 {
		t.Errorf("variation rows = %d, want the 5 the source returned", varRows)
	}
}

func TestToggleExpansionMergeKeepsStagedEditAndOtherRows(t *testing.T) {
	full := makeProduct("p1", 12)
	collapsed := full.Clone()
	collapsed.Variations = collapsed.Variations[:CollapsedVariationsShown]
	src := &fakeSource{
		products: []*Product{collapsed, makeProduct("q1", 2)},
		variationsFn: func(productID string, limit int) ([]*Variation, error) {
			if productID != "p1" {
				return nil, fmt.Errorf("unexpected variation load for %s", productID)
			}
			return full.Clone().Variations, nil
		},
	}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(9.99)); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}
	if err := s.ToggleExpansion(context.Background(), "p1"); err != nil {
		t.Fatalf("ToggleExpansion() failed: %v", err)
	}

	view := s.View()
	p1Rows, q1Rows := 0, 0
	byVid := map[string]RowView{}
	for _, r := range view.Rows {
		if r.Kind != RowKindVariation {
			continue
		}
		byVid[r.VariationID] = r
		switch r.ProductID {
		case "p1":
			p1Rows++
		case "q1":
			q1Rows++
		}
	}
	if p1Rows != 12 {
		t.Errorf("p1 variation rows = %d, want all 12 after expansion", p1Rows)
	}
	if q1Rows != 2 {
		t.Errorf("q1 variation rows = %d, want 2 (other product stays as fetched)", q1Rows)
	}
	if rv := byVid["p1-va"]; rv.Price == nil || rv.Price.Amount != 9.99 {
		t.Errorf("p1-va price = %+v, want staged 9.99 to survive the merge", rv.Price)
	}
	if s.NumberOfChanges() != 1 {
		t.Errorf("NumberOfChanges() = %d, want 1", s.NumberOfChanges())
	}
}

func TestToggleExpansionCollapseDiscardsInFlightLoad(t *testing.T) {
	p := makeProduct("p1", 8)
	p.Variations = p.Variations[:CollapsedVariationsShown]
	block := make(chan struct{})
	src := &fakeSource{products: []*Product{p}, blockVariations: block}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	done := make(chan error, 1)
	go func() { done <- s.ToggleExpansion(context.Background(), "p1") }()

	waitFor(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.varCalls == 1
	}, "expansion fetch never started")

	// Collapse while the load is in flight, then release it.
	if err := s.ToggleExpansion(context.Background(), "p1"); err != nil {
		t.Fatalf("collapse failed: %v", err)
	}
	close(block)
	if err := <-done; err != nil {
		t.Fatalf("expansion returned error: %v", err)
	}

	if s.Expanded("p1") {
		t.Error("product should stay collapsed; the late result must be dropped")
	}
}

func TestToggleExpansionUnknownProduct(t *testing.T) {
	s := newTestSession(t, &fakeSource{}, &fakeSink{})
	mustSync(t, s)
	if err := s.ToggleExpansion(context.Background(), "ghost"); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("ToggleExpansion(ghost) = %v, want ErrRowNotFound", err)
	}
}

func TestToggleExpansionFetchFailureCollapses(t *testing.T) {
	p := makeProduct("p1", 8)
	p.Variations = p.Variations[:CollapsedVariationsShown]
	src := &fakeSource{
		products: []*Product{p},
		variationsFn: func(string, int) ([]*Variation, error) {
			return nil, errors.New("timeout")
		},
	}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	if err := s.ToggleExpansion(context.Background(), "p1"); err == nil {
		t.Fatal("ToggleExpansion() should surface the fetch error")
	}
	if s.Expanded("p1") {
		t.Error("failed expansion should roll back to collapsed")
	}
}

// ============================================================================
// View Tests
// ============================================================================

func TestViewOverlaysPendingEdits(t *testing.T) {
	src := &fakeSource{products: []*Product{makeProduct("p1", 2)}, total: 9}
	s := newTestSession(t, src, &fakeSink{})
	mustSync(t, s)

	if err := s.StagePrice("p1-va", float64Ptr(42)); err != nil {
		t.Fatalf("StagePrice() failed: %v", err)
	}
	if err := s.StageInventory("p1-vb", intPtr(77)); err != nil {
		t.Fatalf("StageInventory() failed: %v", err)
	}

	view := s.View()
	if view.NumberOfChanges != 2 || !view.CanSubmit {
		t.Errorf("view submit state = %d/%v, want 2 changes, submittable", view.NumberOfChanges, view.CanSubmit)
	}
	if view.TotalCount != 9 {
		t.Errorf("TotalCount = %d, want 9", view.TotalCount)
	}

	byVid := map[string]RowView{}
	for _, r := range view.Rows {
		if r.Kind == RowKindVariation {
			byVid[r.VariationID] = r
		}
	}
	if rv := byVid["p1-va"]; rv.Price == nil || rv.Price.Amount != 42 {
		t.Errorf("p1-va price = %+v, want staged 42", rv.Price)
	}
	if rv := byVid["p1-vb"]; rv.Inventory == nil || *rv.Inventory != 77 {
		t.Errorf("p1-vb inventory = %+v, want staged 77", rv.Inventory)
	}
	// Untouched cell shows the server value.
	if rv := byVid["p1-vb"]; rv.Price == nil || rv.Price.Amount != 10 {
		t.Errorf("p1-vb price = %+v, want server 10", rv.Price)
	}
}
