package service

import (
	"context"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/util"
)

// OutcomePublisher - внешний получатель результатов операций (Kafka).
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, event entity.OutcomeEvent) error
}

// Refresher перечитывает коллекции с бэкенда.
type Refresher interface {
	Refresh(ctx context.Context, resource string) error
	RefreshAll(ctx context.Context) error
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*entity.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*entity.User, error)
	Token(ctx context.Context) string
	ValidateToken(token string) (*util.SessionClaims, error)
	RegisterCompany(ctx context.Context, draft entity.Company) (entity.Company, error)
}

type InventoryServiceInterface interface {
	RecordSale(ctx context.Context, req *entity.RecordSaleRequest) (*entity.MovementResponse, error)
	RecordPurchase(ctx context.Context, req *entity.RecordPurchaseRequest, ownerID *int64) (*entity.MovementResponse, error)
}
