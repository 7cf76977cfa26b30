package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

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

// Collection name constants.
const (
	colTenants       = "restro_tenants"
	colSubscriptions = "restro_subscriptions"
	colCategories    = "restro_categories"
	colProducts      = "restro_products"
	colOrders        = "restro_orders"
	colIngredients   = "restro_ingredients"
	colTables        = "restro_tables"
)

// compile-time interface check
var _ restrostore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM. Orders embed
// their items, so every order write touches exactly one document.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all restro collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("restro/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(toTenantModel(t)).Exec(ctx)
	if err != nil {
		return insertErr("create tenant", err)
	}
	return nil
}

func (s *Store) GetTenant(ctx context.Context, tenantID id.TenantID) (*tenant.Tenant, error) {
	var m tenantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": tenantID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, restro.ErrTenantNotFound
		}
		return nil, fmt.Errorf("restro/mongo: get tenant: %w", err)
	}
	return fromTenantModel(&m)
}

func (s *Store) UpdateTenant(ctx context.Context, t *tenant.Tenant) error {
	m := toTenantModel(t)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("restro/mongo: update tenant: %w", err)
	}
	if res.MatchedCount() == 0 {
		return restro.ErrTenantNotFound
	}
	return nil
}

// ==================== Subscription Store ====================

// SaveSubscription upserts on provider_id; _id and created_at are only
// written when the document is inserted.
func (s *Store) SaveSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m := toSubscriptionModel(sub)

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"provider_id": m.ProviderID}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"tenant_id":            m.TenantID,
				"plan":                 m.Plan,
				"status":               m.Status,
				"current_period_start": m.CurrentPeriodStart,
				"current_period_end":   m.CurrentPeriodEnd,
				"canceled_at":          m.CanceledAt,
				"updated_at":           m.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"_id":        m.ID,
				"created_at": m.CreatedAt,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("restro/mongo: save subscription: %w", err)
	}
	return nil
}

func (s *Store) GetSubscriptionByProvider(ctx context.Context, providerID string) (*subscription.Subscription, error) {
	var m subscriptionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"provider_id": providerID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, restro.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("restro/mongo: get subscription: %w", err)
	}
	return fromSubscriptionModel(&m)
}

func (s *Store) ListSubscriptions(ctx context.Context, tenantID id.TenantID) ([]*subscription.Subscription, error) {
	var models []subscriptionModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("restro/mongo: list subscriptions: %w", err)
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
	_, err := s.mdb.NewInsert(toCategoryModel(c)).Exec(ctx)
	if err != nil {
		return insertErr("create category", err)
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context, tenantID id.TenantID) ([]*catalog.Category, error) {
	var models []categoryModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("restro/mongo: list categories: %w", err)
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
	_, err := s.mdb.NewInsert(toProductModel(p)).Exec(ctx)
	if err != nil {
		return insertErr("create product", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, productID id.ProductID) (*catalog.Product, error) {
	var m productModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": productID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, restro.ErrProductNotFound
		}
		return nil, fmt.Errorf("restro/mongo: get product: %w", err)
	}
	return fromProductModel(&m)
}

func (s *Store) ListProducts(ctx context.Context, tenantID id.TenantID) ([]*catalog.Product, error) {
	var models []productModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("restro/mongo: list products: %w", err)
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
	_, err := s.mdb.NewInsert(toOrderModel(o)).Exec(ctx)
	if err != nil {
		return insertErr("create order", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID id.OrderID) (*order.Order, error) {
	var m orderModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": orderID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, restro.ErrOrderNotFound
		}
		return nil, fmt.Errorf("restro/mongo: get order: %w", err)
	}
	return fromOrderModel(&m)
}

func (s *Store) ListOrders(ctx context.Context, tenantID id.TenantID, opts order.ListOpts) ([]*order.Order, error) {
	var models []orderModel

	filter := bson.M{"tenant_id": tenantID.String()}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("restro/mongo: list orders: %w", err)
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

func (s *Store) UpdateOrder(ctx context.Context, o *order.Order) error {
	m := toOrderModel(o)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("restro/mongo: update order: %w", err)
	}
	if res.MatchedCount() == 0 {
		return restro.ErrOrderNotFound
	}
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, orderID id.OrderID) error {
	res, err := s.mdb.NewDelete((*orderModel)(nil)).
		Filter(bson.M{"_id": orderID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("restro/mongo: delete order: %w", err)
	}
	if res.DeletedCount() == 0 {
		return restro.ErrOrderNotFound
	}
	return nil
}

// ==================== Inventory Store ====================

func (s *Store) CreateIngredient(ctx context.Context, ing *inventory.Ingredient) error {
	_, err := s.mdb.NewInsert(toIngredientModel(ing)).Exec(ctx)
	if err != nil {
		return insertErr("create ingredient", err)
	}
	return nil
}

func (s *Store) GetIngredient(ctx context.Context, ingredientID id.IngredientID) (*inventory.Ingredient, error) {
	var m ingredientModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": ingredientID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, restro.ErrIngredientNotFound
		}
		return nil, fmt.Errorf("restro/mongo: get ingredient: %w", err)
	}
	return fromIngredientModel(&m)
}

func (s *Store) ListIngredients(ctx context.Context, tenantID id.TenantID) ([]*inventory.Ingredient, error) {
	var models []ingredientModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("restro/mongo: list ingredients: %w", err)
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
	m := toIngredientModel(ing)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("restro/mongo: update ingredient: %w", err)
	}
	if res.MatchedCount() == 0 {
		return restro.ErrIngredientNotFound
	}
	return nil
}

func (s *Store) DeleteIngredient(ctx context.Context, ingredientID id.IngredientID) error {
	res, err := s.mdb.NewDelete((*ingredientModel)(nil)).
		Filter(bson.M{"_id": ingredientID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("restro/mongo: delete ingredient: %w", err)
	}
	if res.DeletedCount() == 0 {
		return restro.ErrIngredientNotFound
	}
	return nil
}

// ==================== Table Store ====================

func (s *Store) CreateTable(ctx context.Context, t *table.Table) error {
	_, err := s.mdb.NewInsert(toTableModel(t)).Exec(ctx)
	if err != nil {
		return insertErr("create table", err)
	}
	return nil
}

func (s *Store) GetTable(ctx context.Context, tableID id.TableID) (*table.Table, error) {
	var m tableModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": tableID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, restro.ErrTableNotFound
		}
		return nil, fmt.Errorf("restro/mongo: get table: %w", err)
	}
	return fromTableModel(&m)
}

func (s *Store) ListTables(ctx context.Context, tenantID id.TenantID) ([]*table.Table, error) {
	var models []tableModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID.String()}).
		Sort(bson.D{{Key: "number", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("restro/mongo: list tables: %w", err)
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
	m := toTableModel(t)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("restro/mongo: update table: %w", err)
	}
	if res.MatchedCount() == 0 {
		return restro.ErrTableNotFound
	}
	return nil
}

// ==================== Helpers ====================

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func insertErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("restro/mongo: %s: %w", op, restro.ErrAlreadyExists)
	}
	return fmt.Errorf("restro/mongo: %s: %w", op, err)
}

// migrationIndexes returns the index definitions for all restro collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colTenants: {
			{Keys: bson.D{{Key: "slug", Value: 1}}},
		},
		colSubscriptions: {
			{
				Keys:    bson.D{{Key: "provider_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colCategories: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colProducts: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "category_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colOrders: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		colIngredients: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colTables: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}
}
