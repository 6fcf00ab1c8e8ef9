// Package views - производные представления над снимками хранилищ:
// поиск, сортировка, страницы, агрегаты дашборда и экспорт.
// Функции чистые и не держат ссылок на хранилища.
package views

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"stockdesk/console-service/internal/app/console/entity"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Query - параметры списка из строки запроса
type Query struct {
	Search  string
	Sort    string
	Desc    bool
	Page    int
	PerPage int
}

// Page - страница результата
type Page[T any] struct {
	Items   []T
	Total   int
	Page    int
	PerPage int
	Pages   int
}

// Schema описывает, по каким полям сущности искать и сортировать.
type Schema[T any] struct {
	Search []func(T) string
	Sort   map[string]func(a, b T) int
}

// Apply фильтрует, сортирует и режет на страницы. Исходный срез не меняется.
func Apply[T any](items []T, q Query, schema Schema[T]) Page[T] {
	out := make([]T, 0, len(items))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, item := range items {
		if needle == "" || matches(item, needle, schema.Search) {
			out = append(out, item)
		}
	}

	if compare, ok := schema.Sort[q.Sort]; ok {
		slices.SortStableFunc(out, func(a, b T) int {
			if q.Desc {
				return compare(b, a)
			}
			return compare(a, b)
		})
	}

	perPage := q.PerPage
	switch {
	case perPage <= 0:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}

	total := len(out)
	pages := max(1, (total+perPage-1)/perPage)
	page := min(max(q.Page, 1), pages)

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return Page[T]{
		Items:   out[start:end],
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
	}
}

func matches[T any](item T, needle string, fields []func(T) string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(item)), needle) {
			return true
		}
	}
	return false
}

func byText(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

func byMoney(a, b decimal.Decimal) int {
	return a.Cmp(b)
}

var CategorySchema = Schema[entity.Category]{
	Search: []func(entity.Category) string{
		func(c entity.Category) string { return c.Name },
	},
	Sort: map[string]func(a, b entity.Category) int{
		"id":   func(a, b entity.Category) int { return cmp.Compare(a.ID, b.ID) },
		"name": func(a, b entity.Category) int { return byText(a.Name, b.Name) },
	},
}

var ProductSchema = Schema[entity.Product]{
	Search: []func(entity.Product) string{
		func(p entity.Product) string { return p.Name },
		func(p entity.Product) string { return p.SKU },
		func(p entity.Product) string { return p.Category },
	},
	Sort: map[string]func(a, b entity.Product) int{
		"id":           func(a, b entity.Product) int { return cmp.Compare(a.ID, b.ID) },
		"name":         func(a, b entity.Product) int { return byText(a.Name, b.Name) },
		"sku":          func(a, b entity.Product) int { return byText(a.SKU, b.SKU) },
		"category":     func(a, b entity.Product) int { return byText(a.Category, b.Category) },
		"costPrice":    func(a, b entity.Product) int { return byMoney(a.CostPrice, b.CostPrice) },
		"sellingPrice": func(a, b entity.Product) int { return byMoney(a.SellingPrice, b.SellingPrice) },
		"quantity":     func(a, b entity.Product) int { return cmp.Compare(a.Quantity, b.Quantity) },
	},
}

var SaleSchema = Schema[entity.Sale]{
	Search: []func(entity.Sale) string{
		func(s entity.Sale) string { return s.ProductName },
	},
	Sort: map[string]func(a, b entity.Sale) int{
		"id":          func(a, b entity.Sale) int { return cmp.Compare(a.ID, b.ID) },
		"productName": func(a, b entity.Sale) int { return byText(a.ProductName, b.ProductName) },
		"quantity":    func(a, b entity.Sale) int { return cmp.Compare(a.Quantity, b.Quantity) },
		"unitPrice":   func(a, b entity.Sale) int { return byMoney(a.UnitPrice, b.UnitPrice) },
		"totalAmount": func(a, b entity.Sale) int { return byMoney(a.Total(), b.Total()) },
		"createdAt":   func(a, b entity.Sale) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
}

var PurchaseSchema = Schema[entity.Purchase]{
	Search: []func(entity.Purchase) string{
		func(p entity.Purchase) string { return p.ProductName },
	},
	Sort: map[string]func(a, b entity.Purchase) int{
		"id":          func(a, b entity.Purchase) int { return cmp.Compare(a.ID, b.ID) },
		"productName": func(a, b entity.Purchase) int { return byText(a.ProductName, b.ProductName) },
		"quantity":    func(a, b entity.Purchase) int { return cmp.Compare(a.Quantity, b.Quantity) },
		"unitPrice":   func(a, b entity.Purchase) int { return byMoney(a.UnitPrice, b.UnitPrice) },
		"totalAmount": func(a, b entity.Purchase) int { return byMoney(a.Total(), b.Total()) },
		"createdAt":   func(a, b entity.Purchase) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
}

var CompanySchema = Schema[entity.Company]{
	Search: []func(entity.Company) string{
		func(c entity.Company) string { return c.Name },
		func(c entity.Company) string { return c.Email },
		func(c entity.Company) string { return c.Phone },
	},
	Sort: map[string]func(a, b entity.Company) int{
		"id":    func(a, b entity.Company) int { return cmp.Compare(a.ID, b.ID) },
		"name":  func(a, b entity.Company) int { return byText(a.Name, b.Name) },
		"email": func(a, b entity.Company) int { return byText(a.Email, b.Email) },
		"active": func(a, b entity.Company) int {
			return cmp.Compare(boolRank(a.IsActive()), boolRank(b.IsActive()))
		},
		"createdAt": func(a, b entity.Company) int { return compareOptionalTime(a.CreatedAt, b.CreatedAt) },
	},
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}
