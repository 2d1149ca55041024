package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("record not found")

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, description, price::text, color, image_url, sizes, size_quantities, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var price string
	var quantities []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Color, &p.ImageURL,
		&p.Sizes, &quantities, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %s has invalid price %q: %w", p.ID, price, err)
	}
	if err := json.Unmarshal(quantities, &p.SizeQuantities); err != nil {
		return nil, fmt.Errorf("product %s has invalid size quantities: %w", p.ID, err)
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func productFilterClause(filter models.ProductFilter) (string, []interface{}) {
	conds := []string{"is_active = true"}
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.Color != "" {
		args = append(args, filter.Color)
		conds = append(conds, fmt.Sprintf("LOWER(color) = LOWER($%d)", len(args)))
	}
	if filter.Size != "" {
		args = append(args, filter.Size)
		conds = append(conds, fmt.Sprintf("$%d = ANY(sizes)", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

// List returns one page of active products matching filter. Built-in
// catalog products without a table row are listed after the table's rows
// and count towards the total.
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter, limit, offset int) ([]models.Product, int, error) {
	where, args := productFilterClause(filter)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	extras, err := r.catalogOnly(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	products := []models.Product{}
	if offset < total {
		query := fmt.Sprintf(`SELECT `+productColumns+` FROM products WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			where, len(args)+1, len(args)+2)
		rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
		if err != nil {
			return nil, 0, err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return nil, 0, err
			}
			products = append(products, *p)
		}
		if err := rows.Err(); err != nil {
			return nil, 0, err
		}
	}

	start := offset - total
	if start < 0 {
		start = 0
	}
	for i := start; i < len(extras) && len(products) < limit; i++ {
		products = append(products, extras[i])
	}
	return products, total + len(extras), nil
}

// catalogOnly returns the built-in products matching filter that have no
// row in the table. A row, active or not, takes precedence.
func (r *ProductRepository) catalogOnly(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var candidates []models.Product
	ids := []string{}
	for _, p := range CatalogProducts() {
		if filter.Matches(p) {
			candidates = append(candidates, p)
			ids = append(ids, p.ID)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		stored[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	extras := candidates[:0]
	for _, p := range candidates {
		if !stored[p.ID] {
			extras = append(extras, p)
		}
	}
	return extras, nil
}

// FindByID falls back to the built-in catalog when the table has no row.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		if cp, ok := CatalogProduct(id); ok {
			return &cp, nil
		}
		return nil, ErrNotFound
	}
	return p, err
}

func (r *ProductRepository) UpdateImageURL(ctx context.Context, id, imageURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET image_url = $1, updated_at = NOW() WHERE id = $2`, imageURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// StockFor reads size_quantities for the given ids in one query. Ids the
// table does not know fall back to the built-in catalog; ids unknown to
// both are left out of the snapshot.
func (r *ProductRepository) StockFor(ctx context.Context, productIDs []string) (models.StockSnapshot, error) {
	snapshot := make(models.StockSnapshot, len(productIDs))
	if len(productIDs) == 0 {
		return snapshot, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, size_quantities FROM products WHERE id = ANY($1)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("stock query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("stock scan failed: %w", err)
		}
		quantities := models.SizeQuantities{}
		if err := json.Unmarshal(raw, &quantities); err != nil {
			return nil, fmt.Errorf("product %s has invalid size quantities: %w", id, err)
		}
		snapshot[id] = quantities
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stock query failed: %w", err)
	}

	for _, id := range productIDs {
		if _, ok := snapshot[id]; ok {
			continue
		}
		if p, ok := CatalogProduct(id); ok {
			snapshot[id] = p.SizeQuantities
		}
	}
	return snapshot, nil
}
