package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Денежные поля уходят в JSON числами, как их отдаёт REST API
	decimal.MarshalJSONWithoutQuotes = true
}

// Category - категория товаров
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// Product - товар на складе
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	SKU          string          `json:"sku" validate:"max=64"`
	CostPrice    decimal.Decimal `json:"costPrice" validate:"gte=0"`
	SellingPrice decimal.Decimal `json:"sellingPrice" validate:"gte=0"`
	Quantity     int             `json:"quantity" validate:"gte=0"`
	CategoryID   *int64          `json:"categoryId,omitempty"`
	Category     string          `json:"category,omitempty"` // Денормализованное имя категории для фильтров дашборда
}

// Sale - продажа товара
type Sale struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId" validate:"required,gt=0"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	TotalAmount decimal.Decimal `json:"totalAmount" validate:"gte=0"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Total возвращает totalAmount, а при его отсутствии quantity * unitPrice.
func (s Sale) Total() decimal.Decimal {
	return lineTotal(s.TotalAmount, s.Quantity, s.UnitPrice)
}

// Purchase - закупка товара. UnitPrice хранит закупочную цену.
type Purchase struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId" validate:"required,gt=0"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	TotalAmount decimal.Decimal `json:"totalAmount" validate:"gte=0"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   *int64          `json:"createdBy,omitempty"` // Владелец записи, если сервер его прислал
}

func (p Purchase) Total() decimal.Decimal {
	return lineTotal(p.TotalAmount, p.Quantity, p.UnitPrice)
}

func lineTotal(total decimal.Decimal, qty int, unit decimal.Decimal) decimal.Decimal {
	if !total.IsZero() {
		return total
	}
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Company - зарегистрированная компания-клиент
type Company struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name" validate:"required,min=2,max=200"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password,omitempty" validate:"required,min=4"`
	Phone     string     `json:"phone,omitempty" validate:"max=32"`
	Active    bool       `json:"active"`
	Status    string     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// IsActive учитывает и булев флаг, и строковый статус старых записей.
func (c Company) IsActive() bool {
	return c.Active || strings.EqualFold(c.Status, "active")
}

// Public - копия без пароля для ответов наружу.
func (c Company) Public() Company {
	c.Password = ""
	return c
}

// Роли пользователя консоли
const (
	RoleAdmin   = "admin"
	RoleCompany = "company"
)

// User - запись сессии (аналог localStorage "user")
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// ActivityLog - журнал результатов операций хранилищ
type ActivityLog struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Resource  string    `json:"resource" gorm:"type:varchar(32);not null;index"`
	Operation string    `json:"operation" gorm:"type:varchar(16);not null"`
	EntityID  int64     `json:"entityId"`
	Success   bool      `json:"success" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index"`
}

// TableName указывает имя таблицы для GORM
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// OutcomeEvent - событие результата операции для Kafka
type OutcomeEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"` // STORE_OUTCOME
	Resource  string    `json:"resource"`
	Operation string    `json:"operation"`
	EntityID  int64     `json:"entity_id,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

const EventTypeStoreOutcome = "STORE_OUTCOME"

// RefreshEvent - внешний сигнал об изменении данных на сервере
type RefreshEvent struct {
	EventType string `json:"event_type"`         // например PRODUCT_UPDATED
	Resource  string `json:"resource,omitempty"` // пусто - обновить всё
}

func (c Category) GetID() int64 { return c.ID }
func (p Product) GetID() int64  { return p.ID }
func (s Sale) GetID() int64     { return s.ID }
func (p Purchase) GetID() int64 { return p.ID }
func (c Company) GetID() int64  { return c.ID }
