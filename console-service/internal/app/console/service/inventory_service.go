package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/ingest"
	"stockdesk/console-service/internal/app/console/store"
	"stockdesk/pkg/logger"
	"stockdesk/pkg/metrics"
)

// InventoryService записывает продажи и закупки и корректирует остаток товара.
//
// Запись движения и корректировка остатка - две независимые операции.
// Если вторая не удалась, первая не откатывается: ответ содержит StockAdjusted=false.
type InventoryService struct {
	stores        *Stores
	adjustLocally bool // mock: патч quantity; remote: перечитать товары

	// stockMu сериализует чтение и патч quantity, иначе параллельные движения теряют изменения
	stockMu sync.Mutex
}

func NewInventoryService(stores *Stores, adjustLocally bool) *InventoryService {
	return &InventoryService{stores: stores, adjustLocally: adjustLocally}
}

func (s *InventoryService) RecordSale(ctx context.Context, req *entity.RecordSaleRequest) (*entity.MovementResponse, error) {
	product, err := s.product(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > product.Quantity {
		return nil, fmt.Errorf("%w: %d available", ErrInsufficientStock, product.Quantity)
	}

	unit := product.SellingPrice
	if req.UnitPrice != nil {
		unit = *req.UnitPrice
	}

	sale, err := s.stores.Sales.Add(ctx, entity.Sale{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    req.Quantity,
		UnitPrice:   unit,
		TotalAmount: unit.Mul(decimal.NewFromInt(int64(req.Quantity))),
		CreatedAt:   movementTime(req.Date),
	})
	if err != nil {
		return nil, err
	}

	resp := &entity.MovementResponse{Record: sale}
	resp.StockAdjusted, resp.Warning = s.adjustStock(ctx, product.ID, -req.Quantity)
	metrics.InventoryMovements.WithLabelValues("sale", strconv.FormatBool(resp.StockAdjusted)).Inc()
	return resp, nil
}

func (s *InventoryService) RecordPurchase(ctx context.Context, req *entity.RecordPurchaseRequest, ownerID *int64) (*entity.MovementResponse, error) {
	product, err := s.product(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	unit := product.CostPrice
	if req.CostPrice != nil {
		unit = *req.CostPrice
	}

	purchase, err := s.stores.Purchases.Add(ctx, entity.Purchase{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    req.Quantity,
		UnitPrice:   unit,
		TotalAmount: unit.Mul(decimal.NewFromInt(int64(req.Quantity))),
		CreatedAt:   movementTime(req.Date),
		CreatedBy:   ownerID,
	})
	if err != nil {
		return nil, err
	}

	resp := &entity.MovementResponse{Record: purchase}
	resp.StockAdjusted, resp.Warning = s.adjustStock(ctx, product.ID, req.Quantity)
	metrics.InventoryMovements.WithLabelValues("purchase", strconv.FormatBool(resp.StockAdjusted)).Inc()
	return resp, nil
}

// product ищет товар в хранилище, при промахе один раз перечитывает коллекцию.
func (s *InventoryService) product(ctx context.Context, id int64) (entity.Product, error) {
	if p, ok := s.stores.Products.Find(id); ok {
		return p, nil
	}
	if err := s.stores.Products.Refresh(ctx); err != nil {
		return entity.Product{}, err
	}
	if p, ok := s.stores.Products.Find(id); ok {
		return p, nil
	}
	return entity.Product{}, ErrProductNotFound
}

func (s *InventoryService) adjustStock(ctx context.Context, productID int64, delta int) (bool, string) {
	var err error
	if s.adjustLocally {
		s.stockMu.Lock()
		defer s.stockMu.Unlock()
		current, ok := s.stores.Products.Find(productID)
		if !ok {
			return false, "product disappeared before stock update"
		}
		_, err = s.stores.Products.Update(ctx, productID, store.Patch{"quantity": current.Quantity + delta})
	} else {
		err = s.stores.Products.Refresh(ctx)
	}

	if err != nil {
		logger.Warn().Err(err).Int64("product_id", productID).Int("delta", delta).Msg("Stock not adjusted after movement")
		return false, store.ExtractMessage(err, "Stock level may be out of date")
	}
	return true, ""
}

// movementTime - дата из формы или текущий момент.
func movementTime(date string) time.Time {
	if date != "" {
		if t := ingest.ParseTime(date); !t.IsZero() {
			return t
		}
	}
	return time.Now().UTC()
}
