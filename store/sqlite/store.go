package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/restro"
	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	restrostore "github.com/xraph/restro/store"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
)

// compile-time interface check
var _ restrostore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("restro/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("restro/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Tenant Store ====================

func (s *Store) CreateTenant(ctx context.Context, t *tenant.Tenant) error {
	_, err := s.sdb.NewInsert(toTenantModel(t)).Exec(ctx)
	return insertErr(err)
}

func (s *Store) GetTenant(ctx context.Context, tenantID id.TenantID) (*tenant.Tenant, error) {
	m := new(tenantModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", tenantID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, restro.ErrTenantNotFound
		}
		return nil, err
	}
	return fromTenantModel(m)
}

func (s *Store) UpdateTenant(ctx context.Context, t *tenant.Tenant) error {
	res, err := s.sdb.NewUpdate(toTenantModel(t)).WherePK().Exec(ctx)
	return affected(res, err, restro.ErrTenantNotFound)
}

// ==================== Subscription Store ====================

// SaveSubscription upserts on provider_id. The stored id and created_at
// survive the upsert.
func (s *Store) SaveSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m := toSubscriptionModel(sub)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(provider_id) DO UPDATE").
		Set("tenant_id = EXCLUDED.tenant_id").
		Set("plan = EXCLUDED.plan").
		Set("status = EXCLUDED.status").
		Set("current_period_start = EXCLUDED.current_period_start").
		Set("current_period_end = EXCLUDED.current_period_end").
		Set("canceled_at = EXCLUDED.canceled_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetSubscriptionByProvider(ctx context.Context, providerID string) (*subscription.Subscription, error) {
	m := new(subscriptionModel)
	err := s.sdb.NewSelect(m).
		Where("provider_id = ?", providerID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, restro.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return fromSubscriptionModel(m)
}

func (s *Store) ListSubscriptions(ctx context.Context, tenantID id.TenantID) ([]*subscription.Subscription, error) {
	var models []subscriptionModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*subscription.Subscription, len(models))
	for i := range models {
		sub, err := fromSubscriptionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sub
	}
	return result, nil
}

// ==================== Catalog Store ====================

func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	_, err := s.sdb.NewInsert(toCategoryModel(c)).Exec(ctx)
	return insertErr(err)
}

func (s *Store) ListCategories(ctx context.Context, tenantID id.TenantID) ([]*catalog.Category, error) {
	var models []categoryModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID.String()).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*catalog.Category, len(models))
	for i := range models {
		c, err := fromCategoryModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	_, err := s.sdb.NewInsert(toProductModel(p)).Exec(ctx)
	return insertErr(err)
}

func (s *Store) GetProduct(ctx context.Context, productID id.ProductID) (*catalog.Product, error) {
	m := new(productModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", productID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, restro.ErrProductNotFound
		}
		return nil, err
	}
	return fromProductModel(m)
}

func (s *Store) ListProducts(ctx context.Context, tenantID id.TenantID) ([]*catalog.Product, error) {
	var models []productModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID.String()).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*catalog.Product, len(models))
	for i := range models {
		p, err := fromProductModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

// ==================== Order Store ====================

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	m, err := toOrderModel(o)
	if err != nil {
		return err
	}
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return insertErr(err)
}

func (s *Store) GetOrder(ctx context.Context, orderID id.OrderID) (*order.Order, error) {
	m := new(orderModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", orderID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, restro.ErrOrderNotFound
		}
		return nil, err
	}
	return fromOrderModel(m)
}

func (s *Store) ListOrders(ctx context.Context, tenantID id.TenantID, opts order.ListOpts) ([]*order.Order, error) {
	var models []orderModel
	q := s.sdb.NewSelect(&models).Where("tenant_id = ?", tenantID.String())

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC, id DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*order.Order, len(models))
	for i := range models {
		o, err := fromOrderModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = o
	}
	return result, nil
}

// UpdateOrder rewrites the row, items included, in a single statement.
func (s *Store) UpdateOrder(ctx context.Context, o *order.Order) error {
	m, err := toOrderModel(o)
	if err != nil {
		return err
	}
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	return affected(res, err, restro.ErrOrderNotFound)
}

func (s *Store) DeleteOrder(ctx context.Context, orderID id.OrderID) error {
	res, err := s.sdb.NewDelete((*orderModel)(nil)).
		Where("id = ?", orderID.String()).
		Exec(ctx)
	return affected(res, err, restro.ErrOrderNotFound)
}

// ==================== Inventory Store ====================

func (s *Store) CreateIngredient(ctx context.Context, ing *inventory.Ingredient) error {
	_, err := s.sdb.NewInsert(toIngredientModel(ing)).Exec(ctx)
	return insertErr(err)
}

func (s *Store) GetIngredient(ctx context.Context, ingredientID id.IngredientID) (*inventory.Ingredient, error) {
	m := new(ingredientModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", ingredientID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, restro.ErrIngredientNotFound
		}
		return nil, err
	}
	return fromIngredientModel(m)
}

func (s *Store) ListIngredients(ctx context.Context, tenantID id.TenantID) ([]*inventory.Ingredient, error) {
	var models []ingredientModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID.String()).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*inventory.Ingredient, len(models))
	for i := range models {
		ing, err := fromIngredientModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = ing
	}
	return result, nil
}

func (s *Store) UpdateIngredient(ctx context.Context, ing *inventory.Ingredient) error {
	res, err := s.sdb.NewUpdate(toIngredientModel(ing)).WherePK().Exec(ctx)
	return affected(res, err, restro.ErrIngredientNotFound)
}

func (s *Store) DeleteIngredient(ctx context.Context, ingredientID id.IngredientID) error {
	res, err := s.sdb.NewDelete((*ingredientModel)(nil)).
		Where("id = ?", ingredientID.String()).
		Exec(ctx)
	return affected(res, err, restro.ErrIngredientNotFound)
}

// ==================== Table Store ====================

func (s *Store) CreateTable(ctx context.Context, t *table.Table) error {
	_, err := s.sdb.NewInsert(toTableModel(t)).Exec(ctx)
	return insertErr(err)
}

func (s *Store) GetTable(ctx context.Context, tableID id.TableID) (*table.Table, error) {
	m := new(tableModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", tableID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, restro.ErrTableNotFound
		}
		return nil, err
	}
	return fromTableModel(m)
}

func (s *Store) ListTables(ctx context.Context, tenantID id.TenantID) ([]*table.Table, error) {
	var models []tableModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID.String()).
		OrderExpr("number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*table.Table, len(models))
	for i := range models {
		t, err := fromTableModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

func (s *Store) UpdateTable(ctx context.Context, t *table.Table) error {
	res, err := s.sdb.NewUpdate(toTableModel(t)).WherePK().Exec(ctx)
	return affected(res, err, restro.ErrTableNotFound)
}

// ==================== Helpers ====================

type rowsResult interface {
	RowsAffected() (int64, error)
}

// affected maps a zero-row write onto notFound.
func affected(res rowsResult, err, notFound error) error {
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// insertErr maps UNIQUE constraint failures onto ErrAlreadyExists.
func insertErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %w", restro.ErrAlreadyExists, err)
	}
	return err
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
