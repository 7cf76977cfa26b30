package postgres

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
	"github.com/xraph/restro/types"
)

// ==================== Tenant models ====================

type tenantModel struct {
	grove.BaseModel `grove:"table:restro_tenants"`

	ID          string     `grove:"id,pk"`
	Name        string     `grove:"name"`
	Slug        string     `grove:"slug"`
	Currency    string     `grove:"currency"`
	Plan        string     `grove:"plan"`
	TrialEndsAt *time.Time `grove:"trial_ends_at"`
	IsDemo      bool       `grove:"is_demo"`
	CreatedAt   time.Time  `grove:"created_at"`
	UpdatedAt   time.Time  `grove:"updated_at"`
}

func toTenantModel(t *tenant.Tenant) *tenantModel {
	return &tenantModel{
		ID:          t.ID.String(),
		Name:        t.Name,
		Slug:        t.Slug,
		Currency:    t.Currency,
		Plan:        string(t.Plan),
		TrialEndsAt: t.TrialEndsAt,
		IsDemo:      t.IsDemo,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func fromTenantModel(m *tenantModel) (*tenant.Tenant, error) {
	tenantID, err := id.ParseTenantID(m.ID)
	if err != nil {
		return nil, err
	}
	return &tenant.Tenant{
		Entity:      entity(m.CreatedAt, m.UpdatedAt),
		ID:          tenantID,
		Name:        m.Name,
		Slug:        m.Slug,
		Currency:    m.Currency,
		Plan:        tenant.Plan(m.Plan),
		TrialEndsAt: utcPtr(m.TrialEndsAt),
		IsDemo:      m.IsDemo,
	}, nil
}

// ==================== Subscription models ====================

type subscriptionModel struct {
	grove.BaseModel `grove:"table:restro_subscriptions"`

	ID                 string     `grove:"id,pk"`
	TenantID           string     `grove:"tenant_id"`
	ProviderID         string     `grove:"provider_id"`
	Plan               string     `grove:"plan"`
	Status             string     `grove:"status"`
	CurrentPeriodStart *time.Time `grove:"current_period_start"`
	CurrentPeriodEnd   *time.Time `grove:"current_period_end"`
	CanceledAt         *time.Time `grove:"canceled_at"`
	CreatedAt          time.Time  `grove:"created_at"`
	UpdatedAt          time.Time  `grove:"updated_at"`
}

func toSubscriptionModel(s *subscription.Subscription) *subscriptionModel {
	return &subscriptionModel{
		ID:                 s.ID.String(),
		TenantID:           s.TenantID.String(),
		ProviderID:         s.ProviderID,
		Plan:               string(s.Plan),
		Status:             string(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CanceledAt:         s.CanceledAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func fromSubscriptionModel(m *subscriptionModel) (*subscription.Subscription, error) {
	subID, err := id.ParseSubscriptionID(m.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, err
	}
	return &subscription.Subscription{
		Entity:             entity(m.CreatedAt, m.UpdatedAt),
		ID:                 subID,
		TenantID:           tenantID,
		ProviderID:         m.ProviderID,
		Plan:               tenant.Plan(m.Plan),
		Status:             subscription.Status(m.Status),
		CurrentPeriodStart: utcPtr(m.CurrentPeriodStart),
		CurrentPeriodEnd:   utcPtr(m.CurrentPeriodEnd),
		CanceledAt:         utcPtr(m.CanceledAt),
	}, nil
}

// ==================== Catalog models ====================

type categoryModel struct {
	grove.BaseModel `grove:"table:restro_categories"`

	ID        string    `grove:"id,pk"`
	TenantID  string    `grove:"tenant_id"`
	Name      string    `grove:"name"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toCategoryModel(c *catalog.Category) *categoryModel {
	return &categoryModel{
		ID:        c.ID.String(),
		TenantID:  c.TenantID.String(),
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromCategoryModel(m *categoryModel) (*catalog.Category, error) {
	catID, err := id.ParseCategoryID(m.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, err
	}
	return &catalog.Category{
		Entity:   entity(m.CreatedAt, m.UpdatedAt),
		ID:       catID,
		TenantID: tenantID,
		Name:     m.Name,
	}, nil
}

type productModel struct {
	grove.BaseModel `grove:"table:restro_products"`

	ID                     string    `grove:"id,pk"`
	TenantID               string    `grove:"tenant_id"`
	CategoryID             string    `grove:"category_id"`
	Name                   string    `grove:"name"`
	Description            string    `grove:"description"`
	PriceAmount            int64     `grove:"price_amount"`
	PriceCurrency          string    `grove:"price_currency"`
	IsAvailable            bool      `grove:"is_available"`
	PreparationTimeMinutes int       `grove:"preparation_time_minutes"`
	ImageURL               string    `grove:"image_url"`
	CreatedAt              time.Time `grove:"created_at"`
	UpdatedAt              time.Time `grove:"updated_at"`
}

func toProductModel(p *catalog.Product) *productModel {
	return &productModel{
		ID:                     p.ID.String(),
		TenantID:               p.TenantID.String(),
		CategoryID:             p.CategoryID.String(),
		Name:                   p.Name,
		Description:            p.Description,
		PriceAmount:            p.Price.Amount,
		PriceCurrency:          p.Price.Currency,
		IsAvailable:            p.IsAvailable,
		PreparationTimeMinutes: p.PreparationTimeMinutes,
		ImageURL:               p.ImageURL,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

func fromProductModel(m *productModel) (*catalog.Product, error) {
	prodID, err := id.ParseProductID(m.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, err
	}
	catID, err := parseOptional(m.CategoryID, id.PrefixCategory)
	if err != nil {
		return nil, err
	}
	return &catalog.Product{
		Entity:                 entity(m.CreatedAt, m.UpdatedAt),
		ID:                     prodID,
		TenantID:               tenantID,
		CategoryID:             catID,
		Name:                   m.Name,
		Description:            m.Description,
		Price:                  types.Money{Amount: m.PriceAmount, Currency: m.PriceCurrency},
		IsAvailable:            m.IsAvailable,
		PreparationTimeMinutes: m.PreparationTimeMinutes,
		ImageURL:               m.ImageURL,
	}, nil
}

// ==================== Order models ====================

// orderModel stores the order with its items in one JSONB column, so the
// item set is replaced and deleted together with the order row.
type orderModel struct {
	grove.BaseModel `grove:"table:restro_orders"`

	ID              string          `grove:"id,pk"`
	TenantID        string          `grove:"tenant_id"`
	Type            string          `grove:"type"`
	Status          string          `grove:"status"`
	PaymentStatus   string          `grove:"payment_status"`
	PaymentMethod   string          `grove:"payment_method"`
	TotalAmount     int64           `grove:"total_amount"`
	TotalCurrency   string          `grove:"total_currency"`
	TableID         string          `grove:"table_id"`
	CustomerID      string          `grove:"customer_id"`
	CustomerName    string          `grove:"customer_name"`
	CustomerPhone   string          `grove:"customer_phone"`
	DeliveryAddress string          `grove:"delivery_address"`
	Items           json.RawMessage `grove:"items,type:jsonb"`
	CreatedAt       time.Time       `grove:"created_at"`
	UpdatedAt       time.Time       `grove:"updated_at"`
}

func toOrderModel(o *order.Order) (*orderModel, error) {
	items := o.Items
	if items == nil {
		items = []order.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return &orderModel{
		ID:              o.ID.String(),
		TenantID:        o.TenantID.String(),
		Type:            string(o.Type),
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		TotalAmount:     o.TotalAmount.Amount,
		TotalCurrency:   o.TotalAmount.Currency,
		TableID:         o.TableID.String(),
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		DeliveryAddress: o.DeliveryAddress,
		Items:           raw,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

func fromOrderModel(m *orderModel) (*order.Order, error) {
	orderID, err := id.ParseOrderID(m.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, err
	}
	tableID, err := parseOptional(m.TableID, id.PrefixTable)
	if err != nil {
		return nil, err
	}

	items := []order.Item{}
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &items); err != nil {
			return nil, err
		}
	}

	return &order.Order{
		Entity:          entity(m.CreatedAt, m.UpdatedAt),
		ID:              orderID,
		TenantID:        tenantID,
		Type:            order.Type(m.Type),
		Status:          order.Status(m.Status),
		PaymentStatus:   order.PaymentStatus(m.PaymentStatus),
		PaymentMethod:   order.PaymentMethod(m.PaymentMethod),
		TotalAmount:     types.Money{Amount: m.TotalAmount, Currency: m.TotalCurrency},
		TableID:         tableID,
		CustomerID:      m.CustomerID,
		CustomerName:    m.CustomerName,
		CustomerPhone:   m.CustomerPhone,
		DeliveryAddress: m.DeliveryAddress,
		Items:           items,
	}, nil
}

// ==================== Ingredient models ====================

type ingredientModel struct {
	grove.BaseModel `grove:"table:restro_ingredients"`

	ID            string          `grove:"id,pk"`
	TenantID      string          `grove:"tenant_id"`
	Name          string          `grove:"name"`
	Unit          string          `grove:"unit"`
	CurrentStock  decimal.Decimal `grove:"current_stock"`
	MinStockAlert decimal.Decimal `grove:"min_stock_alert"`
	CostPerUnit   decimal.Decimal `grove:"cost_per_unit"`
	LastRestocked time.Time       `grove:"last_restocked"`
	CreatedAt     time.Time       `grove:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"`
}

func toIngredientModel(ing *inventory.Ingredient) *ingredientModel {
	return &ingredientModel{
		ID:            ing.ID.String(),
		TenantID:      ing.TenantID.String(),
		Name:          ing.Name,
		Unit:          string(ing.Unit),
		CurrentStock:  ing.CurrentStock,
		MinStockAlert: ing.MinStockAlert,
		CostPerUnit:   ing.CostPerUnit,
		LastRestocked: ing.LastRestocked,
		CreatedAt:     ing.CreatedAt,
		UpdatedAt:     ing.UpdatedAt,
	}
}

func fromIngredientModel(m *ingredientModel) (*inventory.Ingredient, error) {
	ingID, err := id.ParseIngredientID(m.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, err
	}
	return &inventory.Ingredient{
		Entity:        entity(m.CreatedAt, m.UpdatedAt),
		ID:            ingID,
		TenantID:      tenantID,
		Name:          m.Name,
		Unit:          inventory.Unit(m.Unit),
		CurrentStock:  m.CurrentStock,
		MinStockAlert: m.MinStockAlert,
		CostPerUnit:   m.CostPerUnit,
		LastRestocked: m.LastRestocked.UTC(),
	}, nil
}

// ==================== Table models ====================

type tableModel struct {
	grove.BaseModel `grove:"table:restro_tables"`

	ID              string     `grove:"id,pk"`
	TenantID        string     `grove:"tenant_id"`
	Number          int        `grove:"number"`
	Capacity        int        `grove:"capacity"`
	Status          string     `grove:"status"`
	ReservationName string     `grove:"reservation_name"`
	ReservationTime *time.Time `grove:"reservation_time"`
	CreatedAt       time.Time  `grove:"created_at"`
	UpdatedAt       time.Time  `grove:"updated_at"`
}

func toTableModel(t *table.Table) *tableModel {
	return &tableModel{
		ID:              t.ID.String(),
		TenantID:        t.TenantID.String(),
		Number:          t.Number,
		Capacity:        t.Capacity,
		Status:          string(t.Status),
		ReservationName: t.ReservationName,
		ReservationTime: t.ReservationTime,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func fromTableModel(m *tableModel) (*table.Table, error) {
	tableID, err := id.ParseTableID(m.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, err
	}
	return &table.Table{
		Entity:          entity(m.CreatedAt, m.UpdatedAt),
		ID:              tableID,
		TenantID:        tenantID,
		Number:          m.Number,
		Capacity:        m.Capacity,
		Status:          table.Status(m.Status),
		ReservationName: m.ReservationName,
		ReservationTime: utcPtr(m.ReservationTime),
	}, nil
}

// ==================== Helpers ====================

func entity(created, updated time.Time) types.Entity {
	return types.Entity{CreatedAt: created.UTC(), UpdatedAt: updated.UTC()}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// parseOptional parses a nullable reference column; empty means Nil.
func parseOptional(s string, prefix id.Prefix) (id.ID, error) {
	if s == "" {
		return id.Nil, nil
	}
	return id.ParseWithPrefix(s, prefix)
}
