package service

import (
	"context"
	"errors"
	"fmt"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/store"
)

// Имена коллекций совпадают с путями REST API.
const (
	ResourceCategories = "categories"
	ResourceProducts   = "products"
	ResourceSales      = "sales"
	ResourcePurchases  = "purchases"
	ResourceCompanies  = "companies"
)

// Resources - порядок обновления: справочники раньше движений.
var Resources = []string{ResourceCategories, ResourceProducts, ResourceSales, ResourcePurchases, ResourceCompanies}

// Backends - источники данных для пяти хранилищ.
type Backends struct {
	Categories store.Backend[entity.Category]
	Products   store.Backend[entity.Product]
	Sales      store.Backend[entity.Sale]
	Purchases  store.Backend[entity.Purchase]
	Companies  store.Backend[entity.Company]
}

// Stores - хранилища процесса. Создаются один раз в main и передаются явно.
type Stores struct {
	Categories *store.Store[entity.Category]
	Products   *store.Store[entity.Product]
	Sales      *store.Store[entity.Sale]
	Purchases  *store.Store[entity.Purchase]
	Companies  *store.Store[entity.Company]
}

func NewStores(b Backends, notifier store.Notifier, lastWriterWins bool) *Stores {
	return &Stores{
		Categories: store.New(store.Config[entity.Category]{
			Resource: ResourceCategories, Singular: "category", ID: entity.Category.GetID,
			Backend: b.Categories, Notifier: notifier, LastWriterWins: lastWriterWins,
		}),
		Products: store.New(store.Config[entity.Product]{
			Resource: ResourceProducts, Singular: "product", ID: entity.Product.GetID,
			Backend: b.Products, Notifier: notifier, LastWriterWins: lastWriterWins,
		}),
		Sales: store.New(store.Config[entity.Sale]{
			Resource: ResourceSales, Singular: "sale", ID: entity.Sale.GetID,
			Backend: b.Sales, Notifier: notifier, LastWriterWins: lastWriterWins,
		}),
		Purchases: store.New(store.Config[entity.Purchase]{
			Resource: ResourcePurchases, Singular: "purchase", ID: entity.Purchase.GetID,
			Backend: b.Purchases, Notifier: notifier, LastWriterWins: lastWriterWins,
		}),
		Companies: store.New(store.Config[entity.Company]{
			Resource: ResourceCompanies, Singular: "company", ID: entity.Company.GetID,
			Backend: b.Companies, Notifier: notifier, LastWriterWins: lastWriterWins,
		}),
	}
}

func (s *Stores) Refresh(ctx context.Context, resource string) error {
	switch resource {
	case ResourceCategories:
		return s.Categories.Refresh(ctx)
	case ResourceProducts:
		return s.Products.Refresh(ctx)
	case ResourceSales:
		return s.Sales.Refresh(ctx)
	case ResourcePurchases:
		return s.Purchases.Refresh(ctx)
	case ResourceCompanies:
		return s.Companies.Refresh(ctx)
	}
	return fmt.Errorf("%w: %s", ErrUnknownResource, resource)
}

// RefreshAll обновляет все коллекции; ошибка одной не останавливает остальные.
func (s *Stores) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, resource := range Resources {
		if err := s.Refresh(ctx, resource); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
