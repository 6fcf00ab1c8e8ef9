package entity

import "github.com/shopspring/decimal"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RecordSaleRequest - форма продажи; цена и дата необязательны
type RecordSaleRequest struct {
	ProductID int64            `json:"productId" validate:"required,gt=0"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	Date      string           `json:"date,omitempty"`
}

// RecordPurchaseRequest - форма закупки
type RecordPurchaseRequest struct {
	ProductID int64            `json:"productId" validate:"required,gt=0"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	CostPrice *decimal.Decimal `json:"costPrice,omitempty"`
	Date      string           `json:"date,omitempty"`
}

// MovementResponse - результат записи продажи или закупки
type MovementResponse struct {
	Record        interface{} `json:"record"`
	StockAdjusted bool        `json:"stockAdjusted"`
	Warning       string      `json:"warning,omitempty"`
}

// PageResponse - страница производного представления
type PageResponse struct {
	Items   interface{} `json:"items"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
	Pages   int         `json:"pages"`
}
