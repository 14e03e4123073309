package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"lokalrunner/pkg/models"
	"lokalrunner/storage"
)

// fakeStore is an in-memory storage.IStorage with the same conditional-update
// semantics as the Postgres repos: every transition checks its expected prior
// state under one lock and reports the affected count, and order creation is
// all-or-nothing against stock.
type fakeData struct {
	mu       sync.Mutex
	users    map[int64]*models.User
	cities   map[int64]*models.City
	products map[int64]*models.Product
	orders   map[int64]*models.Order
	items    map[int64][]models.OrderItem
	profiles map[int64]*models.RunnerProfile
	nextID   int64
}

type fakeStore struct{ d *fakeData }

func newFakeStore() *fakeStore {
	return &fakeStore{d: &fakeData{
		users:    make(map[int64]*models.User),
		cities:   make(map[int64]*models.City),
		products: make(map[int64]*models.Product),
		orders:   make(map[int64]*models.Order),
		items:    make(map[int64][]models.OrderItem),
		profiles: make(map[int64]*models.RunnerProfile),
	}}
}

func (s *fakeStore) User() storage.IUserStorage       { return &fakeUsers{s.d} }
func (s *fakeStore) City() storage.ICityStorage       { return &fakeCities{s.d} }
func (s *fakeStore) Product() storage.IProductStorage { return &fakeProducts{s.d} }
func (s *fakeStore) Order() storage.IOrderStorage     { return &fakeOrders{s.d} }
func (s *fakeStore) Runner() storage.IRunnerStorage   { return &fakeRunners{s.d} }
func (s *fakeStore) Close()                           {}
func (s *fakeStore) GetPool() *pgxpool.Pool           { return nil }

func (d *fakeData) id() int64 {
	d.nextID++
	return d.nextID
}

// --- users ---

type fakeUsers struct{ d *fakeData }

func (f *fakeUsers) GetOrCreate(ctx context.Context, email, name string) (*models.User, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, u := range f.d.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	u := &models.User{ID: f.d.id(), Email: email, Name: name, Roles: []string{models.RoleClient}}
	f.d.users[u.ID] = u
	return copyUser(u), nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	u := f.d.users[id]
	if u == nil {
		return nil, nil
	}
	return copyUser(u), nil
}

func (f *fakeUsers) SetPinHash(ctx context.Context, userID int64, pinHash string) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if u := f.d.users[userID]; u != nil {
		h := pinHash
		u.PinHash = &h
	}
	return nil
}

func (f *fakeUsers) AddRole(ctx context.Context, userID int64, role string) ([]string, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	u := f.d.users[userID]
	if u == nil {
		return nil, nil
	}
	if !models.HasRole(u.Roles, role) {
		u.Roles = append(u.Roles, role)
	}
	return append([]string(nil), u.Roles...), nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

// --- cities ---

type fakeCities struct{ d *fakeData }

func (f *fakeCities) GetAll(ctx context.Context) ([]*models.City, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	out := make([]*models.City, 0, len(f.d.cities))
	for _, c := range f.d.cities {
		cc := *c
		out = append(out, &cc)
	}
	return out, nil
}

func (f *fakeCities) GetBySlug(ctx context.Context, slug string) (*models.City, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, c := range f.d.cities {
		if c.Slug == slug {
			cc := *c
			return &cc, nil
		}
	}
	return nil, nil
}

func (f *fakeCities) Create(ctx context.Context, name, slug string) (*models.City, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	c := &models.City{ID: f.d.id(), Name: name, Slug: slug, Active: true}
	f.d.cities[c.ID] = c
	cc := *c
	return &cc, nil
}

// --- products ---

type fakeProducts struct{ d *fakeData }

func (f *fakeProducts) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	p := *product
	p.ID = f.d.id()
	f.d.products[p.ID] = &p
	out := p
	return &out, nil
}

func (f *fakeProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	p := f.d.products[id]
	if p == nil {
		return nil, nil
	}
	pp := *p
	return &pp, nil
}

func (f *fakeProducts) GetByIDs(ctx context.Context, ids []int64) ([]*models.Product, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	out := make([]*models.Product, 0, len(ids))
	for _, id := range ids {
		if p := f.d.products[id]; p != nil {
			pp := *p
			out = append(out, &pp)
		}
	}
	return out, nil
}

func (f *fakeProducts) GetByProvider(ctx context.Context, providerID int64) ([]*models.Product, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	var out []*models.Product
	for _, p := range f.d.products {
		if p.ProviderID == providerID {
			pp := *p
			out = append(out, &pp)
		}
	}
	return out, nil
}

func (f *fakeProducts) GetByCity(ctx context.Context, cityID int64) ([]*models.Product, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	var out []*models.Product
	for _, p := range f.d.products {
		if p.CityID == cityID {
			pp := *p
			out = append(out, &pp)
		}
	}
	return out, nil
}

// --- orders ---

type fakeOrders struct{ d *fakeData }

func (f *fakeOrders) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()

	for _, item := range items {
		p := f.d.products[item.ProductID]
		if p == nil || p.Stock < item.Quantity {
			return nil, &storage.StockConflictError{ProductID: item.ProductID}
		}
	}
	// Re-walk applying decrements; duplicates of one product accumulate.
	applied := make(map[int64]int)
	for _, item := range items {
		p := f.d.products[item.ProductID]
		if p.Stock-applied[item.ProductID] < item.Quantity {
			return nil, &storage.StockConflictError{ProductID: item.ProductID}
		}
		applied[item.ProductID] += item.Quantity
	}
	for id, qty := range applied {
		f.d.products[id].Stock -= qty
	}

	o := *order
	o.ID = f.d.id()
	stored := make([]models.OrderItem, len(items))
	copy(stored, items)
	for i := range stored {
		stored[i].ID = f.d.id()
		stored[i].OrderID = o.ID
	}
	f.d.orders[o.ID] = &o
	f.d.items[o.ID] = stored

	out := o
	out.Items = append([]models.OrderItem(nil), stored...)
	return &out, nil
}

func (f *fakeOrders) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	o := f.d.orders[id]
	if o == nil {
		return nil, nil
	}
	return f.copyOrderLocked(o), nil
}

func (f *fakeOrders) copyOrderLocked(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), f.d.items[o.ID]...)
	return &c
}

func (f *fakeOrders) GetByClient(ctx context.Context, clientID int64) ([]*models.Order, error) {
	return f.filter(func(o *models.Order) bool { return o.ClientID == clientID })
}

func (f *fakeOrders) GetByRunner(ctx context.Context, runnerID int64) ([]*models.Order, error) {
	return f.filter(func(o *models.Order) bool { return o.RunnerID != nil && *o.RunnerID == runnerID })
}

func (f *fakeOrders) GetByProvider(ctx context.Context, providerID int64) ([]*models.Order, error) {
	return f.filter(func(o *models.Order) bool {
		for _, item := range f.d.items[o.ID] {
			if item.ProviderID == providerID {
				return true
			}
		}
		return false
	})
}

func (f *fakeOrders) GetAll(ctx context.Context) ([]*models.Order, error) {
	return f.filter(func(*models.Order) bool { return true })
}

func (f *fakeOrders) GetAvailable(ctx context.Context) ([]*models.Order, error) {
	return f.filter(func(o *models.Order) bool {
		return o.Status == models.OrderStatusPending && o.RunnerID == nil
	})
}

func (f *fakeOrders) filter(keep func(*models.Order) bool) ([]*models.Order, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	out := []*models.Order{}
	for _, o := range f.d.orders {
		if keep(o) {
			out = append(out, f.copyOrderLocked(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) AssignRunner(ctx context.Context, orderID, runnerID int64, baseFee, perKmFee decimal.Decimal, distanceKm *float64) (int64, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	o := f.d.orders[orderID]
	if o == nil || o.Status != models.OrderStatusPending {
		return 0, nil
	}
	f.confirmLocked(o, runnerID, baseFee, perKmFee, distanceKm)
	return 1, nil
}

func (f *fakeOrders) ClaimOrder(ctx context.Context, orderID, runnerID int64, baseFee, perKmFee decimal.Decimal, distanceKm *float64) (int64, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	o := f.d.orders[orderID]
	if o == nil || o.Status != models.OrderStatusPending || o.RunnerID != nil || o.ClientID == runnerID {
		return 0, nil
	}
	f.confirmLocked(o, runnerID, baseFee, perKmFee, distanceKm)
	return 1, nil
}

func (f *fakeOrders) confirmLocked(o *models.Order, runnerID int64, baseFee, perKmFee decimal.Decimal, distanceKm *float64) {
	rid := runnerID
	o.RunnerID = &rid
	o.Status = models.OrderStatusConfirmed
	base, perKm := baseFee, perKmFee
	o.RunnerBaseFee = &base
	o.RunnerPerKmFee = &perKm
	o.DeliveryDistanceKm = distanceKm
}

func (f *fakeOrders) CompleteOrder(ctx context.Context, orderID, runnerID int64) (int64, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	o := f.d.orders[orderID]
	if o == nil || o.Status != models.OrderStatusConfirmed || o.RunnerID == nil || *o.RunnerID != runnerID {
		return 0, nil
	}
	o.Status = models.OrderStatusCompleted
	return 1, nil
}

func (f *fakeOrders) CancelOrder(ctx context.Context, orderID int64) (int64, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	o := f.d.orders[orderID]
	if o == nil || o.Status != models.OrderStatusPending {
		return 0, nil
	}
	o.Status = models.OrderStatusCancelled
	return 1, nil
}

// --- runners ---

type fakeRunners struct{ d *fakeData }

func (f *fakeRunners) GetProfile(ctx context.Context, userID int64) (*models.RunnerProfile, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	p := f.d.profiles[userID]
	if p == nil {
		return nil, nil
	}
	pp := *p
	return &pp, nil
}

func (f *fakeRunners) CreateProfile(ctx context.Context, userID int64) (*models.RunnerProfile, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if p := f.d.profiles[userID]; p != nil {
		pp := *p
		return &pp, nil
	}
	p := &models.RunnerProfile{
		UserID:        userID,
		PriceBase:     decimal.RequireFromString("1.50"),
		PricePerKm:    decimal.RequireFromString("0.40"),
		MinFee:        decimal.RequireFromString("2.00"),
		MaxDistanceKm: 10,
		RatingAvg:     5,
	}
	f.d.profiles[userID] = p
	pp := *p
	return &pp, nil
}

func (f *fakeRunners) UpdateProfile(ctx context.Context, profile *models.RunnerProfile) (*models.RunnerProfile, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	existing := f.d.profiles[profile.UserID]
	if existing == nil {
		return nil, nil
	}
	p := *profile
	p.RatingAvg = existing.RatingAvg
	f.d.profiles[p.UserID] = &p
	pp := p
	return &pp, nil
}

func (f *fakeRunners) GetActive(ctx context.Context) ([]*models.RunnerProfile, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	var out []*models.RunnerProfile
	for _, p := range f.d.profiles {
		if p.IsActive {
			pp := *p
			if u := f.d.users[p.UserID]; u != nil {
				pp.Name = u.Name
			}
			out = append(out, &pp)
		}
	}
	return out, nil
}
