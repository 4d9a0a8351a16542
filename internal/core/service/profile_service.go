package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// ProfileDeps groups the collaborators of ProfileService.
type ProfileDeps struct {
	Tx           ports.Transactor
	Users        ports.UserRepository
	Clients      ports.ClientRepository
	Transporters ports.TransporterRepository
	Orders       ports.OrderRepository
	Sessions     ports.SessionStore
	Events       ports.EventPublisher
	IntN         IntN
}

// ProfileService implements client and transporter management.
type ProfileService struct {
	tx           ports.Transactor
	users        ports.UserRepository
	clients      ports.ClientRepository
	transporters ports.TransporterRepository
	orders       ports.OrderRepository
	sessions     ports.SessionStore
	events       ports.EventPublisher
	intn         IntN
	log          zerolog.Logger
}

func NewProfileService(deps ProfileDeps, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		tx:           deps.Tx,
		users:        deps.Users,
		clients:      deps.Clients,
		transporters: deps.Transporters,
		orders:       deps.Orders,
		sessions:     deps.Sessions,
		events:       deps.Events,
		intn:         defaultIntN(deps.IntN),
		log:          log,
	}
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

func (s *ProfileService) CreateClient(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	owner, err := profileOwner(in.Actor, in.UserID)
	if err != nil {
		return nil, err
	}

	client := &domain.Client{
		UserID:   owner,
		Name:     strings.TrimSpace(in.Name),
		Birthday: in.Birthday,
		Address: domain.Address{
			CEP:      in.Address.CEP,
			Street:   in.Address.Street,
			Number:   in.Address.Number,
			District: in.Address.District,
			City:     in.Address.City,
			UF:       strings.ToUpper(in.Address.UF),
		},
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if owner != nil {
			if err := s.claimIdentity(ctx, *owner); err != nil {
				return err
			}
		}
		return s.clients.Create(ctx, client)
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.Info().Uint("client_id", client.ID).Msg("client created")
	return client, nil
}

func (s *ProfileService) GetClient(ctx context.Context, actor domain.Principal, id uint) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && !client.OwnedBy(actor.UserID) {
		return nil, domain.ErrForbidden
	}
	return client, nil
}

func (s *ProfileService) ListClients(ctx context.Context, actor domain.Principal) ([]*domain.Client, error) {
	return s.clients.List(ctx, listFilter(actor))
}

func (s *ProfileService) UpdateClient(ctx context.Context, in ports.UpdateClientInput) (*domain.Client, error) {
	var client *domain.Client
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		client, err = s.GetClient(ctx, in.Actor, in.ID)
		if err != nil {
			return err
		}

		applyClientPatch(client, in)
		if err := s.clients.Update(ctx, client); err != nil {
			return err
		}
		if in.Password != nil {
			return s.changePassword(ctx, client.UserID, *in.Password)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return client, nil
}

// DeleteClient removes the client, its orders and its linked identity in one
// transaction.
func (s *ProfileService) DeleteClient(ctx context.Context, actor domain.Principal, id uint) error {
	var removedOrders int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		client, err := s.GetClient(ctx, actor, id)
		if err != nil {
			return err
		}

		if removedOrders, err = s.orders.DeleteByClient(ctx, client.ID); err != nil {
			return err
		}
		if err := s.clients.Delete(ctx, client.ID); err != nil {
			return err
		}
		return s.dropIdentity(ctx, client.UserID)
	})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	s.log.Info().Uint("client_id", id).Int64("orders_removed", removedOrders).Msg("client deleted")
	return nil
}

// ---------------------------------------------------------------------------
// Transporters
// ---------------------------------------------------------------------------

func (s *ProfileService) CreateTransporter(ctx context.Context, in ports.CreateTransporterInput) (*domain.Transporter, error) {
	owner, err := profileOwner(in.Actor, in.UserID)
	if err != nil {
		return nil, err
	}

	transporter := &domain.Transporter{
		UserID:      owner,
		Name:        strings.TrimSpace(in.Name),
		Birthday:    in.Birthday,
		CNH:         in.CNH,
		CategoryCNH: strings.ToUpper(in.CategoryCNH),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if owner != nil {
			if err := s.claimIdentity(ctx, *owner); err != nil {
				return err
			}
		}
		return s.transporters.Create(ctx, transporter)
	})
	if err != nil {
		return nil, fmt.Errorf("create transporter: %w", err)
	}

	s.log.Info().Uint("transporter_id", transporter.ID).Msg("transporter created")
	return transporter, nil
}

func (s *ProfileService) GetTransporter(ctx context.Context, actor domain.Principal, id uint) (*domain.Transporter, error) {
	transporter, err := s.transporters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && !transporter.OwnedBy(actor.UserID) {
		return nil, domain.ErrForbidden
	}
	return transporter, nil
}

func (s *ProfileService) ListTransporters(ctx context.Context, actor domain.Principal) ([]*domain.Transporter, error) {
	return s.transporters.List(ctx, listFilter(actor))
}

func (s *ProfileService) UpdateTransporter(ctx context.Context, in ports.UpdateTransporterInput) (*domain.Transporter, error) {
	var transporter *domain.Transporter
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		transporter, err = s.GetTransporter(ctx, in.Actor, in.ID)
		if err != nil {
			return err
		}

		applyTransporterPatch(transporter, in)
		if err := s.transporters.Update(ctx, transporter); err != nil {
			return err
		}
		if in.Password != nil {
			return s.changePassword(ctx, transporter.UserID, *in.Password)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update transporter: %w", err)
	}
	return transporter, nil
}

// DeleteTransporter removes the transporter and its identity. Its undelivered
// orders are redrawn among the remaining transporters; delivered orders, and
// undelivered ones when nobody is left, lose their transporter reference.
func (s *ProfileService) DeleteTransporter(ctx context.Context, actor domain.Principal, id uint) error {
	var events []domain.OrderEvent
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		transporter, err := s.GetTransporter(ctx, actor, id)
		if err != nil {
			return err
		}

		events, err = s.releaseOrders(ctx, transporter.ID, actor.UserID)
		if err != nil {
			return err
		}
		if err := s.transporters.Delete(ctx, transporter.ID); err != nil {
			return err
		}
		return s.dropIdentity(ctx, transporter.UserID)
	})
	if err != nil {
		return fmt.Errorf("delete transporter: %w", err)
	}

	s.events.EnqueueBatch(events)
	s.log.Info().Uint("transporter_id", id).Int("orders_released", len(events)).Msg("transporter deleted")
	return nil
}

func (s *ProfileService) releaseOrders(ctx context.Context, transporterID, actor uint) ([]domain.OrderEvent, error) {
	orders, _, err := s.orders.List(ctx, ports.ListOrdersFilter{TransporterID: &transporterID})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	ids, err := s.transporters.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	remaining := without(ids, transporterID)

	now := time.Now().UTC()
	events := make([]domain.OrderEvent, 0, len(orders))
	for _, o := range orders {
		var next *uint
		eventType := domain.OrderEventUnassigned
		if !o.Delivered() {
			if picked, err := drawTransporter(remaining, s.intn); err == nil {
				next = &picked
				eventType = domain.OrderEventReassigned
			}
		}
		if err := s.orders.SetTransporter(ctx, o.ID, next); err != nil {
			return nil, err
		}
		o.TransporterID = next
		events = append(events, domain.NewOrderEvent(eventType, o, actor, now))
	}
	return events, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// profileOwner decides which identity a new profile binds to. Only staff may
// create profiles for another identity, or for none at all.
func profileOwner(actor domain.Principal, requested *uint) (*uint, error) {
	if actor.IsStaff {
		return requested, nil
	}
	if requested != nil && *requested != actor.UserID {
		return nil, domain.ErrForbidden
	}
	own := actor.UserID
	return &own, nil
}

// claimIdentity locks the identity row and rejects it when it already holds
// a client or a transporter profile.
func (s *ProfileService) claimIdentity(ctx context.Context, userID uint) error {
	if err := s.users.Lock(ctx, userID); err != nil {
		return err
	}

	if _, err := s.clients.FindByUserID(ctx, userID); err == nil {
		return &domain.ProfileConflictError{UserID: userID, Existing: domain.IdentityClient}
	} else if !errors.Is(err, domain.ErrClientNotFound) {
		return err
	}

	if _, err := s.transporters.FindByUserID(ctx, userID); err == nil {
		return &domain.ProfileConflictError{UserID: userID, Existing: domain.IdentityTransporter}
	} else if !errors.Is(err, domain.ErrTransporterNotFound) {
		return err
	}
	return nil
}

// changePassword updates the identity's password and revokes its session.
// Runs inside the caller's transaction so a failed revocation rolls back.
func (s *ProfileService) changePassword(ctx context.Context, userID *uint, password string) error {
	if userID == nil {
		return domain.NewValidationError("user.password", "profile has no linked identity")
	}
	if password == "" {
		return domain.NewValidationError("user.password", "password must not be empty")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, *userID, hash); err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, *userID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.log.Info().Uint("user_id", *userID).Msg("password changed, session revoked")
	return nil
}

func (s *ProfileService) dropIdentity(ctx context.Context, userID *uint) error {
	if userID == nil {
		return nil
	}
	if err := s.users.Delete(ctx, *userID); err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, *userID)
}

func listFilter(actor domain.Principal) ports.ProfileFilter {
	if actor.IsStaff {
		return ports.ProfileFilter{}
	}
	own := actor.UserID
	return ports.ProfileFilter{UserID: &own}
}

func applyClientPatch(c *domain.Client, in ports.UpdateClientInput) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Birthday != nil {
		c.Birthday = *in.Birthday
	}
	if a := in.Address; a != nil {
		if a.CEP != nil {
			c.Address.CEP = *a.CEP
		}
		if a.Street != nil {
			c.Address.Street = *a.Street
		}
		if a.Number != nil {
			c.Address.Number = *a.Number
		}
		if a.District != nil {
			c.Address.District = *a.District
		}
		if a.City != nil {
			c.Address.City = *a.City
		}
		if a.UF != nil {
			c.Address.UF = strings.ToUpper(*a.UF)
		}
	}
}

func applyTransporterPatch(t *domain.Transporter, in ports.UpdateTransporterInput) {
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.Birthday != nil {
		t.Birthday = *in.Birthday
	}
	if in.CNH != nil {
		t.CNH = *in.CNH
	}
	if in.CategoryCNH != nil {
		t.CategoryCNH = strings.ToUpper(*in.CategoryCNH)
	}
}
