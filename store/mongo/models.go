package mongo

import (
	"fmt"
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

	ID          string     `grove:"id,pk"         bson:"_id"`
	Name        string     `grove:"name"          bson:"name"`
	Slug        string     `grove:"slug"          bson:"slug"`
	Currency    string     `grove:"currency"      bson:"currency"`
	Plan        string     `grove:"plan"          bson:"plan"`
	TrialEndsAt *time.Time `grove:"trial_ends_at" bson:"trial_ends_at,omitempty"`
	IsDemo      bool       `grove:"is_demo"       bson:"is_demo"`
	CreatedAt   time.Time  `grove:"created_at"    bson:"created_at"`
	UpdatedAt   time.Time  `grove:"updated_at"    bson:"updated_at"`
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
		return nil, fmt.Errorf("parse tenant id: %w", err)
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

	ID                 string     `grove:"id,pk"                bson:"_id"`
	TenantID           string     `grove:"tenant_id"            bson:"tenant_id"`
	ProviderID         string     `grove:"provider_id"          bson:"provider_id"`
	Plan               string     `grove:"plan"                 bson:"plan"`
	Status             string     `grove:"status"               bson:"status"`
	CurrentPeriodStart *time.Time `grove:"current_period_start" bson:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `grove:"current_period_end"   bson:"current_period_end,omitempty"`
	CanceledAt         *time.Time `grove:"canceled_at"          bson:"canceled_at,omitempty"`
	CreatedAt          time.Time  `grove:"created_at"           bson:"created_at"`
	UpdatedAt          time.Time  `grove:"updated_at"           bson:"updated_at"`
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
		return nil, fmt.Errorf("parse subscription id: %w", err)
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("parse tenant id: %w", err)
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

	ID        string    `grove:"id,pk"      bson:"_id"`
	TenantID  string    `grove:"tenant_id"  bson:"tenant_id"`
	Name      string    `grove:"name"       bson:"name"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
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
		return nil, fmt.Errorf("parse category id: %w", err)
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("parse tenant id: %w", err)
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

	ID                     string    `grove:"id,pk"                    bson:"_id"`
	TenantID               string    `grove:"tenant_id"                bson:"tenant_id"`
	CategoryID             string    `grove:"category_id"              bson:"category_id,omitempty"`
	Name                   string    `grove:"name"                     bson:"name"`
	Description            string    `grove:"description"              bson:"description,omitempty"`
	PriceAmount            int64     `grove:"price_amount"             bson:"price_amount"`
	PriceCurrency          string    `grove:"price_currency"           bson:"price_currency"`
	IsAvailable            bool      `grove:"is_available"             bson:"is_available"`
	PreparationTimeMinutes int       `grove:"preparation_time_minutes" bson:"preparation_time_minutes"`
	ImageURL               string    `grove:"image_url"                bson:"image_url,omitempty"`
	CreatedAt              time.Time `grove:"created_at"               bson:"created_at"`
	UpdatedAt              time.Time `grove:"updated_at"               bson:"updated_at"`
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
		return nil, fmt.Errorf("parse product id: %w", err)
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("parse tenant id: %w", err)
	}
	catID, err := parseOptional(m.CategoryID, id.PrefixCategory)
	if err != nil {
		return nil, fmt.Errorf("parse category id: %w", err)
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

type orderModel struct {
	grove.BaseModel `grove:"table:restro_orders"`

	ID              string      `grove:"id,pk"            bson:"_id"`
	TenantID        string      `grove:"tenant_id"        bson:"tenant_id"`
	Type            string      `grove:"type"             bson:"type"`
	Status          string      `grove:"status"           bson:"status"`
	PaymentStatus   string      `grove:"payment_status"   bson:"payment_status"`
	PaymentMethod   string      `grove:"payment_method"   bson:"payment_method,omitempty"`
	TotalAmount     int64       `grove:"total_amount"     bson:"total_amount"`
	TotalCurrency   string      `grove:"total_currency"   bson:"total_currency"`
	TableID         string      `grove:"table_id"         bson:"table_id,omitempty"`
	CustomerID      string      `grove:"customer_id"      bson:"customer_id,omitempty"`
	CustomerName    string      `grove:"customer_name"    bson:"customer_name,omitempty"`
	CustomerPhone   string      `grove:"customer_phone"   bson:"customer_phone,omitempty"`
	DeliveryAddress string      `grove:"delivery_address" bson:"delivery_address,omitempty"`
	Items           []itemModel `grove:"items"            bson:"items"`
	CreatedAt       time.Time   `grove:"created_at"       bson:"created_at"`
	UpdatedAt       time.Time   `grove:"updated_at"       bson:"updated_at"`
}

type itemModel struct {
	ID            string `bson:"id"`
	ProductID     string `bson:"product_id"`
	ProductName   string `bson:"product_name"`
	Quantity      int    `bson:"quantity"`
	UnitAmount    int64  `bson:"unit_amount"`
	UnitCurrency  string `bson:"unit_currency"`
	Notes         string `bson:"notes,omitempty"`
	KitchenStatus string `bson:"status"`
}

func toOrderModel(o *order.Order) *orderModel {
	items := make([]itemModel, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemModel{
			ID:            it.ID.String(),
			ProductID:     it.ProductID.String(),
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitAmount:    it.UnitPrice.Amount,
			UnitCurrency:  it.UnitPrice.Currency,
			Notes:         it.Notes,
			KitchenStatus: string(it.Status),
		}
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
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func fromOrderModel(m *orderModel) (*order.Order, error) {
	orderID, err := id.ParseOrderID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse order id: %w", err)
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("parse tenant id: %w", err)
	}
	tableID, err := parseOptional(m.TableID, id.PrefixTable)
	if err != nil {
		return nil, fmt.Errorf("parse table id: %w", err)
	}

	items := make([]order.Item, len(m.Items))
	for i, im := range m.Items {
		itemID, err := id.ParseOrderItemID(im.ID)
		if err != nil {
			return nil, fmt.Errorf("parse order item id: %w", err)
		}
		prodID, err := id.ParseProductID(im.ProductID)
		if err != nil {
			return nil, fmt.Errorf("parse product id: %w", err)
		}
		items[i] = order.Item{
			ID:          itemID,
			OrderID:     orderID,
			ProductID:   prodID,
			ProductName: im.ProductName,
			Quantity:    im.Quantity,
			UnitPrice:   types.Money{Amount: im.UnitAmount, Currency: im.UnitCurrency},
			Notes:       im.Notes,
			Status:      order.ItemStatus(im.KitchenStatus),
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

// ingredientModel keeps quantities as decimal strings so no precision is
// lost to float64.
type ingredientModel struct {
	grove.BaseModel `grove:"table:restro_ingredients"`

	ID            string    `grove:"id,pk"           bson:"_id"`
	TenantID      string    `grove:"tenant_id"       bson:"tenant_id"`
	Name          string    `grove:"name"            bson:"name"`
	Unit          string    `grove:"unit"            bson:"unit"`
	CurrentStock  string    `grove:"current_stock"   bson:"current_stock"`
	MinStockAlert string    `grove:"min_stock_alert" bson:"min_stock_alert"`
	CostPerUnit   string    `grove:"cost_per_unit"   bson:"cost_per_unit"`
	LastRestocked time.Time `grove:"last_restocked"  bson:"last_restocked"`
	CreatedAt     time.Time `grove:"created_at"      bson:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"      bson:"updated_at"`
}

func toIngredientModel(ing *inventory.Ingredient) *ingredientModel {
	return &ingredientModel{
		ID:            ing.ID.String(),
		TenantID:      ing.TenantID.String(),
		Name:          ing.Name,
		Unit:          string(ing.Unit),
		CurrentStock:  ing.CurrentStock.String(),
		MinStockAlert: ing.MinStockAlert.String(),
		CostPerUnit:   ing.CostPerUnit.String(),
		LastRestocked: ing.LastRestocked,
		CreatedAt:     ing.CreatedAt,
		UpdatedAt:     ing.UpdatedAt,
	}
}

func fromIngredientModel(m *ingredientModel) (*inventory.Ingredient, error) {
	ingID, err := id.ParseIngredientID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse ingredient id: %w", err)
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("parse tenant id: %w", err)
	}

	var values [3]decimal.Decimal
	for i, raw := range []string{m.CurrentStock, m.MinStockAlert, m.CostPerUnit} {
		if raw == "" {
			continue
		}
		if values[i], err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("parse ingredient quantity %q: %w", raw, err)
		}
	}

	return &inventory.Ingredient{
		Entity:        entity(m.CreatedAt, m.UpdatedAt),
		ID:            ingID,
		TenantID:      tenantID,
		Name:          m.Name,
		Unit:          inventory.Unit(m.Unit),
		CurrentStock:  values[0],
		MinStockAlert: values[1],
		CostPerUnit:   values[2],
		LastRestocked: m.LastRestocked.UTC(),
	}, nil
}

// ==================== Table models ====================

type tableModel struct {
	grove.BaseModel `grove:"table:restro_tables"`

	ID              string     `grove:"id,pk"            bson:"_id"`
	TenantID        string     `grove:"tenant_id"        bson:"tenant_id"`
	Number          int        `grove:"number"           bson:"number"`
	Capacity        int        `grove:"capacity"         bson:"capacity"`
	Status          string     `grove:"status"           bson:"status"`
	ReservationName string     `grove:"reservation_name" bson:"reservation_name,omitempty"`
	ReservationTime *time.Time `grove:"reservation_time" bson:"reservation_time,omitempty"`
	CreatedAt       time.Time  `grove:"created_at"       bson:"created_at"`
	UpdatedAt       time.Time  `grove:"updated_at"       bson:"updated_at"`
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
		return nil, fmt.Errorf("parse table id: %w", err)
	}
	tenantID, err := id.ParseTenantID(m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("parse tenant id: %w", err)
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

func parseOptional(s string, prefix id.Prefix) (id.ID, error) {
	if s == "" {
		return id.Nil, nil
	}
	return id.ParseWithPrefix(s, prefix)
}
