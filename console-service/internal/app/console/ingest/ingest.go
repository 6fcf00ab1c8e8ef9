// Package ingest приводит ответы REST API с разнородными схемами к сущностям консоли.
// Нормализация выполняется один раз при попадании данных в хранилище.
//
// Правило значения: побеждает первое поле списка, которое присутствует и не равно null.
// Нечисловое значение числового поля превращается в ноль.
package ingest

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Списки приоритета полей.
var (
	IDFields = []string{"id", "_id"}

	CategoryNameFields = []string{"name", "title", "categoryName"}

	ProductNameFields         = []string{"name", "productName", "title"}
	ProductSKUFields          = []string{"sku", "SKU", "code"}
	ProductCostFields         = []string{"costPrice", "cost_price", "purchasePrice"}
	ProductSellingFields      = []string{"sellingPrice", "selling_price", "price", "unitPrice", "listPrice", "mrp", "amount"}
	ProductCategoryIDFields   = []string{"categoryId", "category_id"}
	ProductCategoryNameFields = []string{"category", "cat", "categoryName"}

	QuantityFields = []string{"quantity", "qty", "stock"}

	LineProductIDFields   = []string{"productId", "product_id"}
	LineProductNameFields = []string{"productName", "product", "item"}
	SaleUnitPriceFields   = []string{"unitPrice", "unit_price", "price", "sellingPrice"}
	PurchaseUnitFields    = []string{"unitPrice", "unit_price", "costPrice", "cost_price"}
	TotalFields           = []string{"totalAmount", "total_amount", "total"}
	CreatedAtFields       = []string{"createdAt", "created_at", "saleDate", "timestamp", "time", "date"}
	OwnerFields           = []string{"createdBy", "created_by", "userId", "user_id", "ownerId", "owner_id"}

	CompanyNameFields = []string{"name", "companyName"}
)

// timeLayouts - форматы дат, которые встречаются в ответах и формах.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ErrUnexpectedShape - ответ на список не массив и не {data: [...]}.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// List снимает конверт {data: [...]}: data, если это массив, иначе сам payload, если он массив.
func List(body []byte) ([]gjson.Result, error) {
	root := gjson.ParseBytes(body)
	if data := root.Get("data"); data.IsArray() {
		return data.Array(), nil
	}
	if root.IsArray() {
		return root.Array(), nil
	}
	return nil, ErrUnexpectedShape
}

// Object снимает конверт {data: {...}}.
func Object(body []byte) gjson.Result {
	root := gjson.ParseBytes(body)
	if data := root.Get("data"); data.Exists() && data.Type != gjson.Null {
		return data
	}
	return root
}

// First возвращает первое присутствующее и не-null поле.
func First(r gjson.Result, fields ...string) (gjson.Result, bool) {
	for _, f := range fields {
		if v := r.Get(gjson.Escape(f)); v.Exists() && v.Type != gjson.Null {
			return v, true
		}
	}
	return gjson.Result{}, false
}

func String(r gjson.Result, fields ...string) string {
	v, ok := First(r, fields...)
	if !ok {
		return ""
	}
	if v.IsObject() {
		return v.Get("name").String()
	}
	return v.String()
}

func Int64(r gjson.Result, fields ...string) int64 {
	v, ok := First(r, fields...)
	if !ok {
		return 0
	}
	return toInt64(v)
}

func toInt64(v gjson.Result) int64 {
	switch v.Type {
	case gjson.Number:
		return v.Int()
	case gjson.String:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// OptionalInt64 - nil, если ни одно поле не задано.
func OptionalInt64(r gjson.Result, fields ...string) *int64 {
	v, ok := First(r, fields...)
	if !ok {
		return nil
	}
	n := toInt64(v)
	return &n
}

// Decimal читает денежное значение без потери точности.
func Decimal(r gjson.Result, fields ...string) (decimal.Decimal, bool) {
	v, ok := First(r, fields...)
	if !ok {
		return decimal.Zero, false
	}

	var raw string
	switch v.Type {
	case gjson.Number:
		raw = v.Raw
	case gjson.String:
		raw = strings.TrimSpace(v.Str)
	default:
		return decimal.Zero, true
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, true
	}
	return d, true
}

// Time понимает RFC3339, даты форм и epoch в миллисекундах.
func Time(r gjson.Result, fields ...string) time.Time {
	v, ok := First(r, fields...)
	if !ok {
		return time.Time{}
	}
	if v.Type == gjson.Number {
		return time.UnixMilli(v.Int()).UTC()
	}
	return ParseTime(v.String())
}

func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
