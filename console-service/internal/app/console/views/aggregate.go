package views

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"stockdesk/console-service/internal/app/console/entity"
)

const (
	// CategoryAll - пункт фильтра "все категории"
	CategoryAll = "All"
	// CategoryOther - категория товара без метки
	CategoryOther = "Other"

	TopProductsLimit = 5
	ActivityLimit    = 12

	dayLayout = "2006-01-02"
)

// DayPoint - значение за один календарный день UTC
type DayPoint struct {
	Day   string          `json:"day"`
	Value decimal.Decimal `json:"value"`
}

// SeriesByDay суммирует value по дням за последние days дней, включая день now.
// Дни без записей заполняются нулём; записи вне окна и без даты пропускаются.
func SeriesByDay[T any](items []T, at func(T) time.Time, value func(T) decimal.Decimal, days int, now time.Time) []DayPoint {
	if days <= 0 {
		return []DayPoint{}
	}

	today := now.UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(days - 1))

	series := make([]DayPoint, days)
	index := make(map[string]int, days)
	for i := range series {
		day := first.AddDate(0, 0, i).Format(dayLayout)
		series[i] = DayPoint{Day: day, Value: decimal.Zero}
		index[day] = i
	}

	for _, item := range items {
		t := at(item)
		if t.IsZero() {
			continue
		}
		if i, ok := index[t.UTC().Format(dayLayout)]; ok {
			series[i].Value = series[i].Value.Add(value(item))
		}
	}
	return series
}

func RevenueByDay(sales []entity.Sale, days int, now time.Time) []DayPoint {
	return SeriesByDay(sales,
		func(s entity.Sale) time.Time { return s.CreatedAt },
		entity.Sale.Total, days, now)
}

func SpendByDay(purchases []entity.Purchase, days int, now time.Time) []DayPoint {
	return SeriesByDay(purchases,
		func(p entity.Purchase) time.Time { return p.CreatedAt },
		entity.Purchase.Total, days, now)
}

// ProductValue - товар в топе продаж или закупок
type ProductValue struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// DashboardStats - карточки и списки главной страницы
type DashboardStats struct {
	CompaniesTotal    int             `json:"companiesTotal"`
	CompaniesActive   int             `json:"companiesActive"`
	CompaniesInactive int             `json:"companiesInactive"`
	ProductsTotal     int             `json:"productsTotal"`
	AverageStock      int             `json:"averageStock"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalSpend        decimal.Decimal `json:"totalSpend"`
	Categories        []string        `json:"categories"`
	TopSales          []ProductValue  `json:"topSales"`
	TopPurchases      []ProductValue  `json:"topPurchases"`
}

func Dashboard(companies []entity.Company, products []entity.Product, sales []entity.Sale, purchases []entity.Purchase) DashboardStats {
	stats := DashboardStats{
		CompaniesTotal: len(companies),
		ProductsTotal:  len(products),
		TotalRevenue:   decimal.Zero,
		TotalSpend:     decimal.Zero,
	}

	for _, c := range companies {
		if c.IsActive() {
			stats.CompaniesActive++
		}
	}
	stats.CompaniesInactive = stats.CompaniesTotal - stats.CompaniesActive

	if len(products) > 0 {
		stock := decimal.Zero
		for _, p := range products {
			stock = stock.Add(decimal.NewFromInt(int64(p.Quantity)))
		}
		stats.AverageStock = int(stock.Div(decimal.NewFromInt(int64(len(products)))).Round(0).IntPart())
	}

	salesByProduct := make(map[int64]decimal.Decimal)
	for _, s := range sales {
		total := s.Total()
		stats.TotalRevenue = stats.TotalRevenue.Add(total)
		salesByProduct[s.ProductID] = salesByProduct[s.ProductID].Add(total)
	}
	purchasesByProduct := make(map[int64]decimal.Decimal)
	for _, p := range purchases {
		total := p.Total()
		stats.TotalSpend = stats.TotalSpend.Add(total)
		purchasesByProduct[p.ProductID] = purchasesByProduct[p.ProductID].Add(total)
	}

	stats.Categories = CategoryFilters(products)
	stats.TopSales = topProducts(products, salesByProduct, func(p entity.Product) decimal.Decimal { return p.SellingPrice })
	stats.TopPurchases = topProducts(products, purchasesByProduct, func(p entity.Product) decimal.Decimal { return p.CostPrice })
	return stats
}

// CategoryFilters - "All" и различные метки категорий в порядке первого появления.
func CategoryFilters(products []entity.Product) []string {
	out := []string{CategoryAll}
	seen := make(map[string]bool)
	for _, p := range products {
		label := CategoryLabel(p)
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}

func CategoryLabel(p entity.Product) string {
	if p.Category == "" {
		return CategoryOther
	}
	return p.Category
}

// topProducts ранжирует по сумме движений; товар без движений оценивается как цена * остаток.
func topProducts(products []entity.Product, moved map[int64]decimal.Decimal, price func(entity.Product) decimal.Decimal) []ProductValue {
	ranked := make([]ProductValue, 0, len(products))
	for _, p := range products {
		value, ok := moved[p.ID]
		if !ok {
			value = price(p).Mul(decimal.NewFromInt(int64(p.Quantity)))
		}
		ranked = append(ranked, ProductValue{ID: p.ID, Name: p.Name, Value: value})
	}
	slices.SortStableFunc(ranked, func(a, b ProductValue) int { return b.Value.Cmp(a.Value) })
	return ranked[:min(TopProductsLimit, len(ranked))]
}

// Totals - количество и сумма закупок
type Totals struct {
	Count int             `json:"count"`
	Spend decimal.Decimal `json:"spend"`
}

// ProfileSummary - итоги закупок для профиля.
// Display - закупки пользователя, если они есть, иначе все.
type ProfileSummary struct {
	Overall     Totals `json:"overall"`
	UserRelated Totals `json:"userRelated"`
	Display     Totals `json:"display"`
}

func ProfileTotals(purchases []entity.Purchase, userID int64) ProfileSummary {
	summary := ProfileSummary{
		Overall:     Totals{Spend: decimal.Zero},
		UserRelated: Totals{Spend: decimal.Zero},
	}
	for _, p := range purchases {
		total := p.Total()
		summary.Overall.Count++
		summary.Overall.Spend = summary.Overall.Spend.Add(total)
		if p.CreatedBy != nil && *p.CreatedBy == userID {
			summary.UserRelated.Count++
			summary.UserRelated.Spend = summary.UserRelated.Spend.Add(total)
		}
	}

	summary.Display = summary.Overall
	if summary.UserRelated.Count > 0 {
		summary.Display = summary.UserRelated
	}
	return summary
}

// ActivityItem - строка ленты последних движений
type ActivityItem struct {
	Key      string          `json:"key"`
	Title    string          `json:"title"`
	Source   string          `json:"source"`
	Time     time.Time       `json:"time"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// ActivityFeed берёт по 12 последних закупок и продаж, убирает дубли по ключу
// (остаётся более поздняя запись) и возвращает limit самых свежих.
func ActivityFeed(sales []entity.Sale, purchases []entity.Purchase, limit int) []ActivityItem {
	items := make([]ActivityItem, 0, 2*ActivityLimit)
	for _, p := range tail(purchases, ActivityLimit) {
		items = append(items, ActivityItem{
			Key:      fmt.Sprintf("purchase-%d", p.ID),
			Title:    "Purchased " + itemName(p.ProductName),
			Source:   "purchase",
			Time:     p.CreatedAt,
			Quantity: p.Quantity,
			Total:    p.Total(),
		})
	}
	for _, s := range tail(sales, ActivityLimit) {
		items = append(items, ActivityItem{
			Key:      fmt.Sprintf("sale-%d", s.ID),
			Title:    "Sold " + itemName(s.ProductName),
			Source:   "sale",
			Time:     s.CreatedAt,
			Quantity: s.Quantity,
			Total:    s.Total(),
		})
	}

	latest := make(map[string]int, len(items))
	feed := make([]ActivityItem, 0, len(items))
	for _, it := range items {
		if i, ok := latest[it.Key]; ok {
			if feed[i].Time.Before(it.Time) {
				feed[i] = it
			}
			continue
		}
		latest[it.Key] = len(feed)
		feed = append(feed, it)
	}

	slices.SortStableFunc(feed, func(a, b ActivityItem) int { return b.Time.Compare(a.Time) })
	if limit <= 0 || limit > len(feed) {
		limit = len(feed)
	}
	return feed[:limit]
}

func tail[T any](items []T, n int) []T {
	return items[max(0, len(items)-n):]
}

func itemName(name string) string {
	if name == "" {
		return "item"
	}
	return name
}

// CompanyRegistrations - компании от новых к старым; без даты регистрации в конце.
func CompanyRegistrations(companies []entity.Company) []entity.Company {
	out := make([]entity.Company, 0, len(companies))
	for _, c := range companies {
		out = append(out, c.Public())
	}
	slices.SortStableFunc(out, func(a, b entity.Company) int {
		return compareOptionalTime(b.CreatedAt, a.CreatedAt)
	})
	return out
}

// compareOptionalTime: отсутствующая дата меньше любой.
func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(a.UnixNano(), b.UnixNano())
}
