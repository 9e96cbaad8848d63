// Package store implements the catalog data source and mutation sink on
// PostgreSQL using pgx. All queries are parameterized through WhereBuilder;
// submissions run in transactions keyed by the batch idempotency key so a
// retried batch is applied at most once.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchview/catalog/internal/catalog"
)

// ErrPrimaryWarehouse is returned when a delete targets the merchant's
// primary warehouse.
var ErrPrimaryWarehouse = errors.New("primary warehouse cannot be deleted")

// Store serves catalog reads and writes from a PostgreSQL pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps a connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var (
	_ catalog.DataSource   = (*Store)(nil)
	_ catalog.MutationSink = (*Store)(nil)
)

const productColumns = `p.id, p.name, p.sku, p.enabled, p.listing_state,
	p.sales, p.wishes, p.has_brand, p.is_express_enabled, p.is_promoted,
	p.has_clean_image, p.is_return_enrolled, p.last_updated, p.created,
	(SELECT COUNT(*) FROM variations vc WHERE vc.product_id = p.id)`

func sortClause(s catalog.Sort) string {
	col := "p.last_updated"
	if s.Field == catalog.SortSales {
		col = "p.sales"
	}
	dir := "DESC"
	if s.Order == catalog.OrderAsc {
		dir = "ASC"
	}
	// p.id breaks ties so pagination is stable.
	return fmt.Sprintf("ORDER BY %s %s, p.id", col, dir)
}

// ============================================================================
// Reads
// ============================================================================

// FetchRows returns one page of products with their first
// CollapsedVariationsShown variations populated. It fetches one product
// past the limit to learn whether another page exists.
func (s *Store) FetchRows(ctx context.Context, req catalog.Request) (catalog.Page, error) {
	wb := NewWhereBuilder()
	wb.AddRequest(req)
	where, args := wb.Build()
	limitIdx := wb.NextArgIndex()

	query := fmt.Sprintf("SELECT %s FROM products p%s %s LIMIT $%d OFFSET $%d",
		productColumns, where, sortClause(req.Sort), limitIdx, limitIdx+1)
	args = append(args, req.Limit+1, req.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return catalog.Page{}, fmt.Errorf("query products: %w", err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return catalog.Page{}, err
	}

	hasMore := len(products) > req.Limit
	if hasMore {
		products = products[:req.Limit]
	}
	for _, p := range products {
		vars, err := s.fetchVariations(ctx, p.ID, catalog.CollapsedVariationsShown)
		if err != nil {
			return catalog.Page{}, err
		}
		p.Variations = vars
	}
	return catalog.Page{Products: products, HasMore: hasMore}, nil
}

// FetchCount returns the number of products matching the request's filters.
func (s *Store) FetchCount(ctx context.Context, req catalog.Request) (int, error) {
	wb := NewWhereBuilder()
	wb.AddRequest(req)
	where, args := wb.Build()

	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products p"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// FetchTotalCount returns the unfiltered product count.
func (s *Store) FetchTotalCount(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("count all products: %w", err)
	}
	return count, nil
}

// FetchVariations returns up to limit variations of one product.
func (s *Store) FetchVariations(ctx context.Context, productID string, limit int) ([]*catalog.Variation, error) {
	return s.fetchVariations(ctx, productID, limit)
}

func (s *Store) fetchVariations(ctx context.Context, productID string, limit int) ([]*catalog.Variation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id, v.product_id, v.sku, v.color, v.size, v.enabled,
		       v.price_amount, v.price_currency
		FROM variations v
		WHERE v.product_id = $1
		ORDER BY v.id
		LIMIT $2`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("query variations for %s: %w", productID, err)
	}
	defer rows.Close()

	var out []*catalog.Variation
	byID := make(map[string]*catalog.Variation)
	for rows.Next() {
		var (
			v           catalog.Variation
			color, size pgtype.Text
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &color, &size,
			&v.Enabled, &v.Price.Amount, &v.Price.Currency); err != nil {
			return nil, fmt.Errorf("scan variation: %w", err)
		}
		if color.Valid {
			v.Color = &color.String
		}
		if size.Valid {
			v.Size = &size.String
		}
		out = append(out, &v)
		byID[v.ID] = &v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read variations: %w", err)
	}

	if err := s.attachOptions(ctx, productID, byID); err != nil {
		return nil, err
	}
	if err := s.attachInventory(ctx, productID, byID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) attachOptions(ctx context.Context, productID string, byID map[string]*catalog.Variation) error {
	rows, err := s.pool.Query(ctx, `
		SELECT o.variation_id, o.name, o.value
		FROM variation_options o
		JOIN variations v ON v.id = o.variation_id
		WHERE v.product_id = $1
		ORDER BY o.variation_id, o.name`, productID)
	if err != nil {
		return fmt.Errorf("query variation options for %s: %w", productID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			vid string
			opt catalog.VariationOption
		)
		if err := rows.Scan(&vid, &opt.Name, &opt.Value); err != nil {
			return fmt.Errorf("scan variation option: %w", err)
		}
		if v, ok := byID[vid]; ok {
			v.Options = append(v.Options, opt)
		}
	}
	return rows.Err()
}

func (s *Store) attachInventory(ctx context.Context, productID string, byID map[string]*catalog.Variation) error {
	rows, err := s.pool.Query(ctx, `
		SELECT i.variation_id, i.warehouse_id, i.count
		FROM inventory i
		JOIN variations v ON v.id = i.variation_id
		WHERE v.product_id = $1
		ORDER BY i.variation_id, i.warehouse_id`, productID)
	if err != nil {
		return fmt.Errorf("query inventory for %s: %w", productID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			vid   string
			stock catalog.StockLevel
		)
		if err := rows.Scan(&vid, &stock.WarehouseID, &stock.Count); err != nil {
			return fmt.Errorf("scan inventory: %w", err)
		}
		if v, ok := byID[vid]; ok {
			v.Inventory = append(v.Inventory, stock)
		}
	}
	return rows.Err()
}

func scanProducts(rows pgx.Rows) ([]*catalog.Product, error) {
	defer rows.Close()
	var out []*catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Enabled, &p.ListingState,
			&p.Sales, &p.Wishes, &p.HasBrand, &p.IsExpressEnabled, &p.IsPromoted,
			&p.HasCleanImage, &p.IsReturnEnrolled, &p.LastUpdated, &p.Created,
			&p.VariationCount); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return out, nil
}

// ============================================================================
// Writes
// ============================================================================

// SubmitChanges applies one batch atomically. A batch whose idempotency
// key has been seen before returns success without reapplying anything.
// Constraint violations come back as a business rejection rather than an
// error.
func (s *Store) SubmitChanges(ctx context.Context, batch catalog.Batch) (catalog.SubmitResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return catalog.SubmitResult{}, fmt.Errorf("begin submission: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO submissions (idempotency_key) VALUES ($1)
		 ON CONFLICT (idempotency_key) DO NOTHING`, batch.IdempotencyKey)
	if err != nil {
		return catalog.SubmitResult{}, fmt.Errorf("record submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Batch was already applied by an earlier attempt.
		return catalog.SubmitResult{OK: true}, nil
	}

	for _, pc := range batch.Changes {
		res, err := s.applyProductChange(ctx, tx, batch.WarehouseID, pc)
		if err != nil || !res.OK {
			return res, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if res, ok := asRejection(err); ok {
			return res, nil
		}
		return catalog.SubmitResult{}, fmt.Errorf("commit submission: %w", err)
	}
	return catalog.SubmitResult{OK: true}, nil
}

func (s *Store) applyProductChange(ctx context.Context, tx pgx.Tx, warehouseID string, pc catalog.ProductChange) (catalog.SubmitResult, error) {
	if pc.Enabled != nil {
		tag, err := tx.Exec(ctx,
			`UPDATE products SET enabled = $1 WHERE id = $2`, *pc.Enabled, pc.ProductID)
		if err != nil {
			if res, ok := asRejection(err); ok {
				return res, nil
			}
			return catalog.SubmitResult{}, fmt.Errorf("update product %s: %w", pc.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return catalog.SubmitResult{Message: fmt.Sprintf("product %s no longer exists", pc.ProductID)}, nil
		}
	}

	enablementTouched := false
	for _, vc := range pc.Variations {
		if vc.Price != nil {
			tag, err := tx.Exec(ctx,
				`UPDATE variations SET price_amount = $1, price_currency = $2
				 WHERE id = $3 AND product_id = $4`,
				vc.Price.Amount, vc.Price.Currency, vc.VariationID, pc.ProductID)
			if err != nil {
				if res, ok := asRejection(err); ok {
					return res, nil
				}
				return catalog.SubmitResult{}, fmt.Errorf("update price for %s: %w", vc.VariationID, err)
			}
			if tag.RowsAffected() == 0 {
				return catalog.SubmitResult{Message: fmt.Sprintf("variation %s no longer exists", vc.VariationID)}, nil
			}
		}
		if vc.Inventory != nil {
			_, err := tx.Exec(ctx,
				`INSERT INTO inventory (variation_id, warehouse_id, count)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (variation_id, warehouse_id)
				 DO UPDATE SET count = EXCLUDED.count`,
				vc.VariationID, warehouseID, *vc.Inventory)
			if err != nil {
				if res, ok := asRejection(err); ok {
					return res, nil
				}
				return catalog.SubmitResult{}, fmt.Errorf("update inventory for %s: %w", vc.VariationID, err)
			}
		}
		if vc.Enabled != nil {
			tag, err := tx.Exec(ctx,
				`UPDATE variations SET enabled = $1 WHERE id = $2 AND product_id = $3`,
				*vc.Enabled, vc.VariationID, pc.ProductID)
			if err != nil {
				if res, ok := asRejection(err); ok {
					return res, nil
				}
				return catalog.SubmitResult{}, fmt.Errorf("update variation %s: %w", vc.VariationID, err)
			}
			if tag.RowsAffected() == 0 {
				return catalog.SubmitResult{Message: fmt.Sprintf("variation %s no longer exists", vc.VariationID)}, nil
			}
			enablementTouched = true
		}
	}

	// A multi-variation product's enabled state follows its variations:
	// on when every variation is on.
	if enablementTouched && pc.Enabled == nil {
		_, err := tx.Exec(ctx,
			`UPDATE products p
			 SET enabled = COALESCE(
			     (SELECT bool_and(v.enabled) FROM variations v WHERE v.product_id = p.id),
			     p.enabled)
			 WHERE p.id = $1`, pc.ProductID)
		if err != nil {
			return catalog.SubmitResult{}, fmt.Errorf("derive enabled for %s: %w", pc.ProductID, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE products SET last_updated = now() WHERE id = $1`, pc.ProductID); err != nil {
		return catalog.SubmitResult{}, fmt.Errorf("touch product %s: %w", pc.ProductID, err)
	}
	return catalog.SubmitResult{OK: true}, nil
}

// asRejection maps constraint violations to a business rejection the
// merchant can act on. Everything else stays an error.
func asRejection(err error) (catalog.SubmitResult, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514", "23503", "23505": // check, foreign key, unique
			return catalog.SubmitResult{Message: pgErr.Message}, true
		}
	}
	return catalog.SubmitResult{}, false
}

// RemoveProduct marks a listing removed by the merchant and turns its
// variations off. Already-removed listings are left alone.
func (s *Store) RemoveProduct(ctx context.Context, productID string) (catalog.SubmitResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return catalog.SubmitResult{}, fmt.Errorf("begin removal: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE products
		 SET listing_state = $1, enabled = FALSE, last_updated = now()
		 WHERE id = $2 AND listing_state NOT IN ($3, $4)`,
		string(catalog.StateRemovedByMerchant), productID,
		string(catalog.StateRemovedByMerchant), string(catalog.StateRemovedByPlatform))
	if err != nil {
		return catalog.SubmitResult{}, fmt.Errorf("remove product %s: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.SubmitResult{Message: "product not found or already removed"}, nil
	}
	if _, err := tx.Exec(ctx,
		`UPDATE variations SET enabled = FALSE WHERE product_id = $1`, productID); err != nil {
		return catalog.SubmitResult{}, fmt.Errorf("disable variations of %s: %w", productID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return catalog.SubmitResult{}, fmt.Errorf("commit removal: %w", err)
	}
	return catalog.SubmitResult{OK: true}, nil
}

// ============================================================================
// Warehouses
// ============================================================================

// ListWarehouses returns the merchant's warehouses, primary first.
func (s *Store) ListWarehouses(ctx context.Context) ([]catalog.Warehouse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, unit_id, country_code, is_primary
		FROM warehouses
		ORDER BY is_primary DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query warehouses: %w", err)
	}
	defer rows.Close()

	var out []catalog.Warehouse
	for rows.Next() {
		var w catalog.Warehouse
		if err := rows.Scan(&w.ID, &w.UnitID, &w.CountryCode, &w.Primary); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read warehouses: %w", err)
	}
	return out, nil
}

// GetWarehouse returns one warehouse by id.
func (s *Store) GetWarehouse(ctx context.Context, id string) (catalog.Warehouse, error) {
	var w catalog.Warehouse
	err := s.pool.QueryRow(ctx, `
		SELECT id, unit_id, country_code, is_primary
		FROM warehouses WHERE id = $1`, id).
		Scan(&w.ID, &w.UnitID, &w.CountryCode, &w.Primary)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Warehouse{}, fmt.Errorf("warehouse %s not found", id)
	}
	if err != nil {
		return catalog.Warehouse{}, fmt.Errorf("query warehouse %s: %w", id, err)
	}
	return w, nil
}

// DeleteWarehouse removes a warehouse and its stock records. The primary
// warehouse cannot be deleted.
func (s *Store) DeleteWarehouse(ctx context.Context, id string) error {
	w, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return err
	}
	if w.Primary {
		return ErrPrimaryWarehouse
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin warehouse delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM inventory WHERE warehouse_id = $1`, id); err != nil {
		return fmt.Errorf("delete inventory of warehouse %s: %w", id, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete warehouse %s: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit warehouse delete: %w", err)
	}
	return nil
}

// ============================================================================
// Export
// ============================================================================

// ExportProducts fetches up to limit products matching the request with
// every variation populated, for CSV export.
func (s *Store) ExportProducts(ctx context.Context, req catalog.Request, limit int) ([]*catalog.Product, error) {
	wb := NewWhereBuilder()
	wb.AddRequest(req)
	where, args := wb.Build()

	query := fmt.Sprintf("SELECT %s FROM products p%s %s LIMIT $%d",
		productColumns, where, sortClause(req.Sort), wb.NextArgIndex())
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query export products: %w", err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		vars, err := s.fetchVariations(ctx, p.ID, p.VariationCount)
		if err != nil {
			return nil, err
		}
		p.Variations = vars
	}
	return products, nil
}
