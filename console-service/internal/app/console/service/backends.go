package service

import (
	"time"

	"stockdesk/console-service/internal/app/console/entity"
	apihttp "stockdesk/console-service/internal/app/console/infrastructure/http"
	"stockdesk/console-service/internal/app/console/infrastructure/mock"
	"stockdesk/console-service/internal/app/console/ingest"
)

// NewRemoteBackends - все коллекции через REST API.
func NewRemoteBackends(client *apihttp.APIClient) Backends {
	return Backends{
		Categories: apihttp.NewResource(client, ResourceCategories, ingest.Category),
		Products:   apihttp.NewResource(client, ResourceProducts, ingest.Product),
		Sales:      apihttp.NewResource(client, ResourceSales, ingest.Sale),
		Purchases:  apihttp.NewResource(client, ResourcePurchases, ingest.Purchase),
		Companies:  apihttp.NewResource(client, ResourceCompanies, ingest.Company),
	}
}

// NewMockBackends - in-memory коллекции; категории засеяны двумя записями.
func NewMockBackends(latency time.Duration) Backends {
	return Backends{
		Categories: mock.NewCollection(ResourceCategories, entity.Category.GetID, assignCategory,
			mock.WithLatency[entity.Category](latency),
			mock.WithSeed(
				entity.Category{ID: 1, Name: "Electronics"},
				entity.Category{ID: 2, Name: "Groceries"},
			)),
		Products: mock.NewCollection(ResourceProducts, entity.Product.GetID, assignProduct,
			mock.WithLatency[entity.Product](latency)),
		Sales: mock.NewCollection(ResourceSales, entity.Sale.GetID, assignSale,
			mock.WithLatency[entity.Sale](latency)),
		Purchases: mock.NewCollection(ResourcePurchases, entity.Purchase.GetID, assignPurchase,
			mock.WithLatency[entity.Purchase](latency)),
		Companies: mock.NewCollection(ResourceCompanies, entity.Company.GetID, assignCompany,
			mock.WithLatency[entity.Company](latency)),
	}
}

func assignCategory(c entity.Category, id int64, _ time.Time) entity.Category {
	c.ID = id
	return c
}

func assignProduct(p entity.Product, id int64, _ time.Time) entity.Product {
	p.ID = id
	return p
}

func assignSale(s entity.Sale, id int64, now time.Time) entity.Sale {
	s.ID = id
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now.UTC()
	}
	s.TotalAmount = s.Total()
	return s
}

func assignPurchase(p entity.Purchase, id int64, now time.Time) entity.Purchase {
	p.ID = id
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}
	p.TotalAmount = p.Total()
	return p
}

func assignCompany(c entity.Company, id int64, now time.Time) entity.Company {
	c.ID = id
	if c.CreatedAt == nil {
		at := now.UTC()
		c.CreatedAt = &at
	}
	return c
}
