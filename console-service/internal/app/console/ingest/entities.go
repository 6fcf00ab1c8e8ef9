package ingest

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"stockdesk/console-service/internal/app/console/entity"
)

func Category(r gjson.Result) entity.Category {
	return entity.Category{
		ID:   Int64(r, IDFields...),
		Name: String(r, CategoryNameFields...),
	}
}

func Product(r gjson.Result) entity.Product {
	cost, _ := Decimal(r, ProductCostFields...)
	selling, _ := Decimal(r, ProductSellingFields...)

	p := entity.Product{
		ID:           Int64(r, IDFields...),
		Name:         String(r, ProductNameFields...),
		SKU:          String(r, ProductSKUFields...),
		CostPrice:    cost,
		SellingPrice: selling,
		Quantity:     int(Int64(r, QuantityFields...)),
		CategoryID:   OptionalInt64(r, ProductCategoryIDFields...),
	}

	// category бывает строкой или вложенным объектом {id, name}
	if c, ok := First(r, ProductCategoryNameFields...); ok && c.IsObject() {
		p.Category = c.Get("name").String()
		if p.CategoryID == nil {
			p.CategoryID = OptionalInt64(c, IDFields...)
		}
	} else {
		p.Category = String(r, ProductCategoryNameFields...)
	}
	return p
}

func Sale(r gjson.Result) entity.Sale {
	qty := int(Int64(r, QuantityFields...))
	unit, _ := Decimal(r, SaleUnitPriceFields...)

	return entity.Sale{
		ID:          Int64(r, IDFields...),
		ProductID:   lineProductID(r),
		ProductName: String(r, LineProductNameFields...),
		Quantity:    qty,
		UnitPrice:   unit,
		TotalAmount: total(r, qty, unit),
		CreatedAt:   Time(r, CreatedAtFields...),
	}
}

func Purchase(r gjson.Result) entity.Purchase {
	qty := int(Int64(r, QuantityFields...))
	unit, _ := Decimal(r, PurchaseUnitFields...)

	return entity.Purchase{
		ID:          Int64(r, IDFields...),
		ProductID:   lineProductID(r),
		ProductName: String(r, LineProductNameFields...),
		Quantity:    qty,
		UnitPrice:   unit,
		TotalAmount: total(r, qty, unit),
		CreatedAt:   Time(r, CreatedAtFields...),
		CreatedBy:   OptionalInt64(r, OwnerFields...),
	}
}

func Company(r gjson.Result) entity.Company {
	c := entity.Company{
		ID:       Int64(r, IDFields...),
		Name:     String(r, CompanyNameFields...),
		Email:    r.Get("email").String(),
		Password: r.Get("password").String(),
		Phone:    r.Get("phone").String(),
		Status:   r.Get("status").String(),
	}
	if v, ok := First(r, "active"); ok {
		c.Active = v.Bool()
	} else {
		c.Active = strings.EqualFold(c.Status, "active")
	}
	if t := Time(r, CreatedAtFields...); !t.IsZero() {
		c.CreatedAt = &t
	}
	return c
}

// lineProductID: productId, product_id, либо id вложенного объекта product.
func lineProductID(r gjson.Result) int64 {
	if id := Int64(r, LineProductIDFields...); id != 0 {
		return id
	}
	if p := r.Get("product"); p.IsObject() {
		return Int64(p, IDFields...)
	}
	return 0
}

func total(r gjson.Result, qty int, unit decimal.Decimal) decimal.Decimal {
	if t, ok := Decimal(r, TotalFields...); ok {
		return t
	}
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}
