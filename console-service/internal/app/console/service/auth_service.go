package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/repository"
	"stockdesk/console-service/internal/app/console/store"
	"stockdesk/console-service/internal/app/console/util"
	"stockdesk/pkg/logger"
	"stockdesk/pkg/metrics"
)

// AdminAccount - учётная запись администратора из конфигурации
type AdminAccount struct {
	Email    string
	Password string
	Name     string
}

// AuthService ведёт сессию консоли: вход, выход, токен для HTTP-клиента.
type AuthService struct {
	sessions  repository.SessionRepository
	companies *store.Store[entity.Company]
	jwt       *util.JWTManager
	admin     AdminAccount
}

func NewAuthService(
	sessions repository.SessionRepository,
	companies *store.Store[entity.Company],
	jwt *util.JWTManager,
	admin AdminAccount,
) *AuthService {
	return &AuthService{
		sessions:  sessions,
		companies: companies,
		jwt:       jwt,
		admin:     admin,
	}
}

// Login проверяет администратора, затем компании (первая запись с совпавшими email и паролем).
// Успешный вход сохраняет запись user в хранилище сессии.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.TrimSpace(email)

	var user *entity.User
	if s.admin.Email != "" && strings.EqualFold(email, s.admin.Email) && util.CheckPassword(password, s.admin.Password) {
		user = &entity.User{Name: s.admin.Name, Email: s.admin.Email, Role: entity.RoleAdmin}
	} else {
		company, err := s.findCompany(ctx, email, password)
		if err != nil {
			metrics.AuthLogins.WithLabelValues(entity.RoleCompany, "failed").Inc()
			return nil, err
		}
		if company.Status != "" && !company.IsActive() {
			metrics.AuthLogins.WithLabelValues(entity.RoleCompany, "failed").Inc()
			return nil, ErrCompanyInactive
		}
		user = &entity.User{ID: company.ID, Name: company.Name, Email: company.Email, Role: entity.RoleCompany}
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, err
	}
	user.Token = token

	if err := s.sessions.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	metrics.AuthLogins.WithLabelValues(user.Role, "success").Inc()
	logger.Info().Str("email", user.Email).Str("role", user.Role).Msg("User logged in")
	return user, nil
}

// findCompany - линейный поиск по паре email и пароль; пустую коллекцию сначала загружает.
func (s *AuthService) findCompany(ctx context.Context, email, password string) (entity.Company, error) {
	items := s.companies.Items()
	if len(items) == 0 {
		s.loadCompanies(ctx)
		items = s.companies.Items()
	}

	for _, c := range items {
		if strings.EqualFold(c.Email, email) && util.CheckPassword(password, c.Password) {
			return c, nil
		}
	}
	return entity.Company{}, ErrInvalidCredentials
}

func (s *AuthService) loadCompanies(ctx context.Context) {
	if err := s.companies.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to load companies")
	}
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (*entity.User, error) {
	user, err := s.sessions.Load(ctx)
	if errors.Is(err, repository.ErrNoSession) {
		return nil, ErrNotAuthenticated
	}
	return user, err
}

// Token - bearer-токен для HTTP-клиента; пустая строка, если сессии нет.
func (s *AuthService) Token(ctx context.Context) string {
	user, err := s.sessions.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNoSession) {
			logger.Warn().Err(err).Msg("Failed to read session")
		}
		return ""
	}
	return user.Token
}

func (s *AuthService) ValidateToken(token string) (*util.SessionClaims, error) {
	return s.jwt.ValidateToken(token)
}

// RegisterCompany хэширует пароль и добавляет активную компанию.
func (s *AuthService) RegisterCompany(ctx context.Context, draft entity.Company) (entity.Company, error) {
	if s.companies.Status() == store.StatusIdle {
		s.loadCompanies(ctx)
	}
	for _, c := range s.companies.Items() {
		if strings.EqualFold(c.Email, draft.Email) {
			return entity.Company{}, ErrCompanyExists
		}
	}

	hash, err := util.HashPassword(draft.Password)
	if err != nil {
		return entity.Company{}, fmt.Errorf("failed to hash password: %w", err)
	}
	draft.ID = 0
	draft.Password = hash
	draft.Active = true
	draft.Status = "active"

	return s.companies.Add(ctx, draft)
}
