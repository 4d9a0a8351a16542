package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory store shared by the stub repositories
// ---------------------------------------------------------------------------

type memStore struct {
	users        map[uint]*domain.User
	clients      map[uint]*domain.Client
	transporters map[uint]*domain.Transporter
	products     map[uint]*domain.Product
	orders       map[uint]*domain.Order
	nextID       uint
	locked       []uint // identity rows locked through UserRepository.Lock
	txCount      int
	clock        time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uint]*domain.User),
		clients:      make(map[uint]*domain.Client),
		transporters: make(map[uint]*domain.Transporter),
		products:     make(map[uint]*domain.Product),
		orders:       make(map[uint]*domain.Order),
		clock:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

// stubTx runs fn directly; failures are surfaced but not rolled back.
type stubTx struct{ store *memStore }

func (t stubTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.txCount++
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct{ *memStore }

func (r stubUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.users {
		if existing.CPF == u.CPF {
			return domain.ErrUserExists
		}
	}
	u.ID = r.id()
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r stubUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r stubUserRepo) FindByCPF(_ context.Context, cpf string) (*domain.User, error) {
	for _, u := range r.users {
		if u.CPF == cpf {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUserRepo) UpdatePassword(_ context.Context, id uint, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r stubUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r stubUserRepo) Lock(_ context.Context, id uint) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	r.memStore.locked = append(r.memStore.locked, id)
	return nil
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

type stubClientRepo struct{ *memStore }

func (r stubClientRepo) Create(_ context.Context, c *domain.Client) error {
	if c.UserID != nil {
		for _, existing := range r.clients {
			if existing.UserID != nil && *existing.UserID == *c.UserID {
				return domain.ErrProfileExists
			}
		}
	}
	c.ID = r.id()
	clone := *c
	r.clients[c.ID] = &clone
	return nil
}

func (r stubClientRepo) FindByID(_ context.Context, id uint) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (r stubClientRepo) FindByUserID(_ context.Context, userID uint) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.OwnedBy(userID) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r stubClientRepo) List(_ context.Context, f ports.ProfileFilter) ([]*domain.Client, error) {
	out := []*domain.Client{}
	for _, c := range r.clients {
		if f.UserID != nil && !c.OwnedBy(*f.UserID) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r stubClientRepo) Update(_ context.Context, c *domain.Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return domain.ErrClientNotFound
	}
	clone := *c
	r.clients[c.ID] = &clone
	return nil
}

func (r stubClientRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.clients[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.clients, id)
	return nil
}

type stubTransporterRepo struct{ *memStore }

func (r stubTransporterRepo) Create(_ context.Context, t *domain.Transporter) error {
	if t.UserID != nil {
		for _, existing := range r.transporters {
			if existing.UserID != nil && *existing.UserID == *t.UserID {
				return domain.ErrProfileExists
			}
		}
	}
	t.ID = r.id()
	clone := *t
	r.transporters[t.ID] = &clone
	return nil
}

func (r stubTransporterRepo) FindByID(_ context.Context, id uint) (*domain.Transporter, error) {
	t, ok := r.transporters[id]
	if !ok {
		return nil, domain.ErrTransporterNotFound
	}
	clone := *t
	return &clone, nil
}

func (r stubTransporterRepo) FindByUserID(_ context.Context, userID uint) (*domain.Transporter, error) {
	for _, t := range r.transporters {
		if t.OwnedBy(userID) {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrTransporterNotFound
}

func (r stubTransporterRepo) List(_ context.Context, f ports.ProfileFilter) ([]*domain.Transporter, error) {
	out := []*domain.Transporter{}
	for _, t := range r.transporters {
		if f.UserID != nil && !t.OwnedBy(*f.UserID) {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r stubTransporterRepo) ListIDs(_ context.Context) ([]uint, error) {
	ids := make([]uint, 0, len(r.transporters))
	for id := range r.transporters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r stubTransporterRepo) Update(_ context.Context, t *domain.Transporter) error {
	if _, ok := r.transporters[t.ID]; !ok {
		return domain.ErrTransporterNotFound
	}
	clone := *t
	r.transporters[t.ID] = &clone
	return nil
}

func (r stubTransporterRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.transporters[id]; !ok {
		return domain.ErrTransporterNotFound
	}
	delete(r.transporters, id)
	return nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct{ *memStore }

func (r stubProductRepo) nameTaken(name string, self uint) bool {
	for _, p := range r.products {
		if p.Name == name && p.ID != self {
			return true
		}
	}
	return false
}

func (r stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	if r.nameTaken(p.Name, 0) {
		return domain.ErrDuplicateProductName
	}
	p.ID = r.id()
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r stubProductRepo) FindByID(_ context.Context, id uint) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r stubProductRepo) FindByName(_ context.Context, name string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r stubProductRepo) FindByIDs(_ context.Context, ids []uint) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r stubProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range r.products {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	if r.nameTaken(p.Name, p.ID) {
		return domain.ErrDuplicateProductName
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r stubProductRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	*memStore
	createErr error
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Products = append([]domain.Product(nil), o.Products...)
	if o.TransporterID != nil {
		id := *o.TransporterID
		clone.TransporterID = &id
	}
	return &clone
}

func (r stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	o.ID = r.id()
	r.memStore.clock = r.memStore.clock.Add(time.Minute)
	o.CreatedAt = r.memStore.clock
	o.UpdatedAt = o.CreatedAt
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r stubOrderRepo) FindByID(_ context.Context, id uint) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// List applies the same filters and ordering as the SQL repository.
func (r stubOrderRepo) List(_ context.Context, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	matched := []*domain.Order{}
	for _, o := range r.orders {
		if f.ClientID != nil && o.ClientID != *f.ClientID {
			continue
		}
		if f.TransporterID != nil && (o.TransporterID == nil || *o.TransporterID != *f.TransporterID) {
			continue
		}
		if f.Delivered != nil && o.Delivered() != *f.Delivered {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if f.Limit <= 0 {
		return matched, total, nil
	}
	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		return []*domain.Order{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r stubOrderRepo) SetTransporter(_ context.Context, orderID uint, transporterID *uint) error {
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.TransporterID = transporterID
	return nil
}

func (r stubOrderRepo) MarkDelivered(_ context.Context, orderID uint, status string, at time.Time) error {
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.DeliveryDate = &at
	return nil
}

func (r stubOrderRepo) DeleteByClient(_ context.Context, clientID uint) (int64, error) {
	var n int64
	for id, o := range r.orders {
		if o.ClientID == clientID {
			delete(r.orders, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Sessions, idempotency, events, photos
// ---------------------------------------------------------------------------

type stubSessions struct {
	active    map[uint]string
	revoked   []uint
	revokeErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{active: make(map[uint]string)}
}

func (s *stubSessions) Save(_ context.Context, userID uint, tokenID string, _ time.Duration) error {
	s.active[userID] = tokenID
	return nil
}

func (s *stubSessions) Current(_ context.Context, userID uint) (string, error) {
	return s.active[userID], nil
}

func (s *stubSessions) Revoke(_ context.Context, userID uint) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	delete(s.active, userID)
	s.revoked = append(s.revoked, userID)
	return nil
}

// stubIdempotency stores 0 for a claimed key whose order is not known yet.
type stubIdempotency struct {
	keys      map[string]uint
	claimErr error
	released []string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]uint)}
}

func (s *stubIdempotency) Claim(_ context.Context, scope, key string) (bool, error) {
	if s.claimErr != nil {
		return false, s.claimErr
	}
	if _, ok := s.keys[scope+"|"+key]; ok {
		return false, nil
	}
	s.keys[scope+"|"+key] = 0
	return true, nil
}

func (s *stubIdempotency) Lookup(_ context.Context, scope, key string) (uint, bool, error) {
	id, ok := s.keys[scope+"|"+key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, scope, key string, orderID uint) error {
	s.keys[scope+"|"+key] = orderID
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, scope, key string) error {
	delete(s.keys, scope+"|"+key)
	s.released = append(s.released, key)
	return nil
}

type stubPublisher struct {
	events  []domain.OrderEvent
	batches int
}

func (p *stubPublisher) Enqueue(e domain.OrderEvent) {
	p.events = append(p.events, e)
}

func (p *stubPublisher) EnqueueBatch(events []domain.OrderEvent) {
	p.batches++
	p.events = append(p.events, events...)
}

func (p *stubPublisher) types() []domain.OrderEventType {
	out := make([]domain.OrderEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type stubEventRepo struct {
	insertErr error
	inserted  []*domain.OrderEvent
}

func (r *stubEventRepo) Insert(_ context.Context, e *domain.OrderEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, e)
	return nil
}

func (r *stubEventRepo) ListByOrder(_ context.Context, orderID uint) ([]*domain.OrderEvent, error) {
	out := []*domain.OrderEvent{}
	for _, e := range r.inserted {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

var errStoreDown = errors.New("store unavailable")

// ---------------------------------------------------------------------------
// Harness: every service wired to the same in-memory store
// ---------------------------------------------------------------------------

type harness struct {
	store        *memStore
	users        stubUserRepo
	clients      stubClientRepo
	transporters stubTransporterRepo
	products     stubProductRepo
	orders       *stubOrderRepo
	sessions     *stubSessions
	idempotency  *stubIdempotency
	publisher    *stubPublisher
	events       *stubEventRepo
	draws        []int // n passed to every IntN call
	pick         int   // index returned by IntN (clamped to n-1)

	auth    *AuthService
	profile *ProfileService
	order   *OrderService
	stats   *StatisticsService
}

func newHarness() *harness {
	store := newMemStore()
	h := &harness{
		store:        store,
		users:        stubUserRepo{store},
		clients:      stubClientRepo{store},
		transporters: stubTransporterRepo{store},
		products:     stubProductRepo{store},
		orders:       &stubOrderRepo{memStore: store},
		sessions:     newStubSessions(),
		idempotency:  newStubIdempotency(),
		publisher:    &stubPublisher{},
		events:       &stubEventRepo{},
	}
	intn := func(n int) int {
		h.draws = append(h.draws, n)
		if h.pick >= n {
			return n - 1
		}
		return h.pick
	}

	h.auth = NewAuthService(h.users, h.clients, h.transporters, h.sessions,
		AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour}, discardLogger)
	h.profile = NewProfileService(ProfileDeps{
		Tx:           stubTx{store},
		Users:        h.users,
		Clients:      h.clients,
		Transporters: h.transporters,
		Orders:       h.orders,
		Sessions:     h.sessions,
		Events:       h.publisher,
		IntN:         intn,
	}, discardLogger)
	h.order = NewOrderService(OrderDeps{
		Tx:           stubTx{store},
		Orders:       h.orders,
		Products:     h.products,
		Transporters: h.transporters,
		Identities:   h.auth,
		Events:       h.events,
		Publisher:    h.publisher,
		Idempotency:  h.idempotency,
		IntN:         intn,
	}, OrderConfig{}, discardLogger)
	h.stats = NewStatisticsService(h.orders, h.transporters, h.auth, discardLogger)
	return h
}

func (h *harness) user(cpf string, staff bool) domain.Principal {
	u := &domain.User{CPF: cpf, PasswordHash: "x", IsActive: true, IsStaff: staff}
	if err := h.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return domain.Principal{UserID: u.ID, CPF: cpf, IsStaff: staff}
}

func (h *harness) client(owner *domain.Principal) *domain.Client {
	c := &domain.Client{Name: "Ana", Address: domain.Address{CEP: "01001000", Street: "Praça da Sé", Number: 1, District: "Sé", City: "São Paulo", UF: "SP"}}
	if owner != nil {
		id := owner.UserID
		c.UserID = &id
	}
	if err := h.clients.Create(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}

func (h *harness) transporter(owner *domain.Principal) *domain.Transporter {
	t := &domain.Transporter{Name: "Caio", CNH: "12345678900", CategoryCNH: "B"}
	if owner != nil {
		id := owner.UserID
		t.UserID = &id
	}
	if err := h.transporters.Create(context.Background(), t); err != nil {
		panic(err)
	}
	return t
}

func (h *harness) product(name, value string) *domain.Product {
	p := &domain.Product{Name: name, Value: decimal.RequireFromString(value), WeightKg: "1"}
	if err := h.products.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}
