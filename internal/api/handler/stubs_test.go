package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chaeso/delivery-api/internal/api/middleware"
	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	ports.AuthService
	registerFn func(ctx context.Context, cpf, password string) (*domain.User, error)
	loginFn    func(ctx context.Context, cpf, password string) (string, *domain.User, error)
	identity   domain.Identity
	identErr   error
	loggedOut  []uint
}

func (s *stubAuthService) Register(ctx context.Context, cpf, password string) (*domain.User, error) {
	return s.registerFn(ctx, cpf, password)
}

func (s *stubAuthService) Login(ctx context.Context, cpf, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, cpf, password)
}

func (s *stubAuthService) Logout(_ context.Context, userID uint) error {
	s.loggedOut = append(s.loggedOut, userID)
	return nil
}

func (s *stubAuthService) CurrentUser(_ context.Context, userID uint) (*domain.User, error) {
	return &domain.User{ID: userID, CPF: "12345678901", IsActive: true}, nil
}

func (s *stubAuthService) ResolveIdentity(_ context.Context, p domain.Principal) (domain.Identity, error) {
	if s.identErr != nil {
		return domain.Identity{}, s.identErr
	}
	id := s.identity
	id.Principal = p
	return id, nil
}

type stubOrderService struct {
	ports.OrderService
	createFn func(ctx context.Context, in ports.CreateOrderInput) (*ports.OrderResult, error)
	listFn   func(ctx context.Context, in ports.ListOrdersInput) (*ports.ListOrdersResult, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*ports.OrderResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubOrderService) ListOrders(ctx context.Context, in ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	return s.listFn(ctx, in)
}

type stubProfileService struct {
	ports.ProfileService
	createClientFn func(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error)
	updateClientFn func(ctx context.Context, in ports.UpdateClientInput) (*domain.Client, error)
}

func (s *stubProfileService) CreateClient(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	return s.createClientFn(ctx, in)
}

func (s *stubProfileService) UpdateClient(ctx context.Context, in ports.UpdateClientInput) (*domain.Client, error) {
	return s.updateClientFn(ctx, in)
}

type stubCatalogService struct {
	ports.CatalogService
	attachFn func(ctx context.Context, id uint, photo ports.PhotoUpload) (*domain.Product, error)
}

func (s *stubCatalogService) AttachPhoto(ctx context.Context, id uint, photo ports.PhotoUpload) (*domain.Product, error) {
	return s.attachFn(ctx, id, photo)
}

type stubStatisticsService struct {
	reports []ports.TransporterReport
	err     error
	actors  []domain.Principal
}

func (s *stubStatisticsService) TransporterStatistics(_ context.Context, actor domain.Principal) ([]ports.TransporterReport, error) {
	s.actors = append(s.actors, actor)
	return s.reports, s.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// jsonContext builds a context for a JSON request, authenticated as p when
// p.UserID is non-zero.
func jsonContext(e *echo.Echo, method, target, body string, p domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p.UserID != 0 {
		c.Set(middleware.PrincipalKey, p)
	}
	return c, rec
}
