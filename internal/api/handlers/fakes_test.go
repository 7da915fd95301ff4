package handlers_test

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/models"
	"storefront/internal/repository"
)

// In-memory repositories backing the handler tests. They mirror the
// postgres implementations' visible behavior: sentinel errors, upsert
// semantics, most-recent-first cart ordering and conditional stock
// decrements.

type memStore struct {
	mu sync.Mutex

	users    map[int]*models.User
	sessions map[string]*models.Session

	products map[int]*models.Product
	sizes    map[int][]models.ProductSize

	carts     map[int][]models.CartItem
	favorites map[int]map[int]bool

	orders     map[int]*models.Order
	orderItems map[int][]models.OrderItem

	nextUserID  int
	nextProdID  int
	nextOrderID int
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[int]*models.User),
		sessions:    make(map[string]*models.Session),
		products:    make(map[int]*models.Product),
		sizes:       make(map[int][]models.ProductSize),
		carts:       make(map[int][]models.CartItem),
		favorites:   make(map[int]map[int]bool),
		orders:      make(map[int]*models.Order),
		orderItems:  make(map[int][]models.OrderItem),
		nextUserID:  1,
		nextProdID:  1,
		nextOrderID: 1,
	}
}

type memUsers struct{ s *memStore }

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = m.s.nextUserID
	m.s.nextUserID++
	clone := *u
	m.s.users[u.ID] = &clone
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memSessions struct{ s *memStore }

func (m *memSessions) Create(_ context.Context, sess *models.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	clone := *sess
	m.s.sessions[sess.Token] = &clone
	return nil
}

func (m *memSessions) GetByToken(_ context.Context, token string) (*models.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sess, ok := m.s.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *sess
	return &clone, nil
}

func (m *memSessions) DeleteByUserID(_ context.Context, userID int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for token, sess := range m.s.sessions {
		if sess.UserID == userID {
			delete(m.s.sessions, token)
		}
	}
	return nil
}

type memProducts struct{ s *memStore }

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p.ProductID = m.s.nextProdID
	m.s.nextProdID++
	clone := *p
	m.s.products[p.ProductID] = &clone
	return nil
}

func (m *memProducts) GetByID(_ context.Context, id int) (*models.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok || !p.Active {
		return nil, repository.ErrNotFound
	}
	clone := *p
	clone.Sizes = append([]models.ProductSize(nil), m.s.sizes[id]...)
	return &clone, nil
}

func (m *memProducts) GetAll(_ context.Context, activeOnly bool) ([]models.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Product
	for _, p := range m.s.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (m *memProducts) Update(_ context.Context, id int, patch repository.ProductPatch) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	return nil
}

func (m *memProducts) Delete(_ context.Context, id int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.s.products, id)
	delete(m.s.sizes, id)
	return nil
}

func (m *memProducts) ListSizes(_ context.Context, productID int) ([]models.ProductSize, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[productID]; !ok {
		return nil, repository.ErrNotFound
	}
	return append([]models.ProductSize(nil), m.s.sizes[productID]...), nil
}

func (m *memProducts) GetSize(_ context.Context, productID int, size string) (*models.ProductSize, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok || !p.Active {
		return nil, repository.ErrNotFound
	}
	for _, ps := range m.s.sizes[productID] {
		if ps.Size == size {
			clone := ps
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memProducts) ReplaceSizes(_ context.Context, productID int, sizes []models.ProductSize) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[productID]; !ok {
		return repository.ErrNotFound
	}
	m.s.sizes[productID] = append([]models.ProductSize(nil), sizes...)
	return nil
}

func (m *memProducts) DecrementStock(_ context.Context, productID int, size string, quantity int) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.decrementLocked(productID, size, quantity), nil
}

func (s *memStore) decrementLocked(productID int, size string, quantity int) bool {
	sizes := s.sizes[productID]
	for i := range sizes {
		if sizes[i].Size == size && sizes[i].Stock >= quantity {
			sizes[i].Stock -= quantity
			return true
		}
	}
	return false
}

type memCarts struct{ s *memStore }

func (m *memCarts) List(_ context.Context, userID int) ([]models.CartItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	items := m.s.carts[userID]
	// Most recently added first.
	out := make([]models.CartItem, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	return out, nil
}

func (m *memCarts) Add(_ context.Context, userID, productID int, size string, quantity int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok {
		return repository.ErrNotFound
	}
	items := m.s.carts[userID]
	for i := range items {
		if items[i].ProductID == productID && items[i].Size == size {
			items[i].Quantity += quantity
			return nil
		}
	}
	m.s.carts[userID] = append(items, models.CartItem{
		ProductID: productID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Size:      size,
		Quantity:  quantity,
	})
	return nil
}

func (m *memCarts) Remove(_ context.Context, userID, productID int, size string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	items := m.s.carts[userID]
	kept := items[:0]
	for _, item := range items {
		if item.ProductID == productID && (size == "" || item.Size == size) {
			continue
		}
		kept = append(kept, item)
	}
	m.s.carts[userID] = kept
	return nil
}

func (m *memCarts) Clear(_ context.Context, userID int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.carts, userID)
	return nil
}

type memFavorites struct{ s *memStore }

func (m *memFavorites) List(_ context.Context, userID int) ([]models.Favorite, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Favorite
	for productID := range m.s.favorites[userID] {
		p, ok := m.s.products[productID]
		if !ok {
			continue
		}
		out = append(out, models.Favorite{ProductID: p.ProductID, Name: p.Name, Price: p.Price, Image: p.Image})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (m *memFavorites) Toggle(_ context.Context, userID, productID int) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok || !p.Active {
		return false, repository.ErrNotFound
	}
	set := m.s.favorites[userID]
	if set == nil {
		set = make(map[int]bool)
		m.s.favorites[userID] = set
	}
	if set[productID] {
		delete(set, productID)
		return false, nil
	}
	set[productID] = true
	return true, nil
}

type memOrders struct{ s *memStore }

func (m *memOrders) CreateOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	// All-or-nothing: undo decrements already taken when a later line
	// cannot be satisfied.
	type taken struct {
		productID int
		size      string
		quantity  int
	}
	var decremented []taken
	undo := func() {
		for _, d := range decremented {
			sizes := m.s.sizes[d.productID]
			for i := range sizes {
				if sizes[i].Size == d.size {
					sizes[i].Stock += d.quantity
				}
			}
		}
	}

	for _, item := range items {
		if item.Size == "" {
			continue
		}
		if !m.s.decrementLocked(item.ProductID, item.Size, item.Quantity) {
			undo()
			return &repository.StockError{Size: item.Size}
		}
		decremented = append(decremented, taken{item.ProductID, item.Size, item.Quantity})
	}

	order.OrderID = m.s.nextOrderID
	m.s.nextOrderID++
	clone := *order
	m.s.orders[order.OrderID] = &clone

	stored := make([]models.OrderItem, len(items))
	for i, item := range items {
		item.OrderItemID = i + 1
		item.OrderID = order.OrderID
		stored[i] = item
	}
	m.s.orderItems[order.OrderID] = stored

	delete(m.s.carts, order.UserID)
	return nil
}

func (m *memOrders) GetByUserID(_ context.Context, userID int) ([]models.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Order
	for _, o := range m.s.orders {
		if o.UserID != userID {
			continue
		}
		clone := *o
		clone.Items = append([]models.OrderItem(nil), m.s.orderItems[o.OrderID]...)
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID > out[j].OrderID })
	return out, nil
}

func (m *memOrders) GetOrderWithItems(_ context.Context, id int) (*models.Order, []models.OrderItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	clone := *o
	return &clone, append([]models.OrderItem(nil), m.s.orderItems[id]...), nil
}
