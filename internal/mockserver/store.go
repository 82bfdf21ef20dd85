package mockserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

var (
	errNotFound     = errors.New("not found")
	errEmailTaken   = errors.New("email already registered")
	errWrongPass    = errors.New("wrong password")
	errNotPending   = errors.New("order already shipped")
	errUnknownState = errors.New("unknown order state")
	errDuplicate    = errors.New("already exists")
)

var knownStates = map[shopapi.OrderState]bool{
	shopapi.OrderStatePending:         true,
	shopapi.OrderStateAwaitingReceipt: true,
	shopapi.OrderStateCompleted:       true,
	shopapi.OrderStateCancelled:       true,
}

type account struct {
	user shopapi.User
	hash string
}

type cartKey struct{ userID, productID int64 }

type likeKey struct{ userID, productID int64 }

// Store is the backend's in-memory state. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	nextUser, nextProduct, nextOrder int64

	users    map[int64]*account
	products map[int64]*shopapi.Product
	orders   map[int64]*shopapi.Order
	cart     map[cartKey]int
	likes    map[likeKey]bool

	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    map[int64]*account{},
		products: map[int64]*shopapi.Product{},
		orders:   map[int64]*shopapi.Order{},
		cart:     map[cartKey]int{},
		likes:    map[likeKey]bool{},
		now:      time.Now,
	}
}

// ─── Users ────────────────────────────────────────────────────────────────────

func (s *Store) Register(email, password, username string, isManager bool) (shopapi.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return shopapi.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.users {
		if strings.EqualFold(a.user.Email, email) {
			return shopapi.User{}, errEmailTaken
		}
	}
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	s.nextUser++
	a := &account{
		user: shopapi.User{ID: s.nextUser, Email: email, Username: username, Status: "active", IsManager: isManager},
		hash: hash,
	}
	s.users[a.user.ID] = a
	return a.user, nil
}

// Authenticate returns errNotFound for an unknown email and errWrongPass for
// a bad password.
func (s *Store) Authenticate(email, password string) (shopapi.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.users {
		if !strings.EqualFold(a.user.Email, email) {
			continue
		}
		if !auth.CheckPassword(a.hash, password) {
			return shopapi.User{}, errWrongPass
		}
		return withPrimaryAddress(a.user), nil
	}
	return shopapi.User{}, errNotFound
}

func (s *Store) User(id int64) (shopapi.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.users[id]
	if !ok {
		return shopapi.User{}, errNotFound
	}
	return withPrimaryAddress(a.user), nil
}

func (s *Store) Users() []shopapi.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]shopapi.User, 0, len(s.users))
	for _, a := range s.users {
		out = append(out, withPrimaryAddress(a.user))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SearchUsers matches every non-empty field as a case-insensitive substring.
func (s *Store) SearchUsers(q shopapi.UserQuery) []shopapi.User {
	var out []shopapi.User
	for _, u := range s.Users() {
		if contains(u.Username, q.Username) && contains(u.Email, q.Email) && contains(u.Status, q.Status) {
			out = append(out, u)
		}
	}
	return out
}

// UpdateUser applies fn to the stored user under the write lock.
func (s *Store) UpdateUser(id int64, fn func(u *shopapi.User) error) (shopapi.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.users[id]
	if !ok {
		return shopapi.User{}, errNotFound
	}
	if err := fn(&a.user); err != nil {
		return shopapi.User{}, err
	}
	return withPrimaryAddress(a.user), nil
}

func (s *Store) ChangePassword(id int64, current, next string) error {
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.users[id]
	if !ok {
		return errNotFound
	}
	if !auth.CheckPassword(a.hash, current) {
		return errWrongPass
	}
	a.hash = hash
	return nil
}

func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return errNotFound
	}
	delete(s.users, id)
	for k := range s.cart {
		if k.userID == id {
			delete(s.cart, k)
		}
	}
	return nil
}

func withPrimaryAddress(u shopapi.User) shopapi.User {
	u.Addresses = append([]string(nil), u.Addresses...)
	u.Address = ""
	if len(u.Addresses) > 0 {
		u.Address = u.Addresses[0]
	}
	return u
}

// ─── Products ─────────────────────────────────────────────────────────────────

func (s *Store) AddProduct(p shopapi.Product) shopapi.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProduct++
	p.ID = s.nextProduct
	p.LikeCount = 0
	s.products[p.ID] = &p
	return p
}

func (s *Store) Product(id int64) (shopapi.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return shopapi.Product{}, errNotFound
	}
	return *p, nil
}

// UpdateProduct applies fn to the stored product under the write lock.
func (s *Store) UpdateProduct(id int64, fn func(p *shopapi.Product)) (shopapi.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return shopapi.Product{}, errNotFound
	}
	fn(p)
	return *p, nil
}

func (s *Store) DeleteProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return errNotFound
	}
	delete(s.products, id)
	for k := range s.likes {
		if k.productID == id {
			delete(s.likes, k)
		}
	}
	return nil
}

// ProductQuery selects and pages products.
type ProductQuery struct {
	Class    string
	Name     string
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
	SortBy   string // product_id | product_price | product_name
	Desc     bool
	Page     int // 1-based
	PageSize int // 0 returns everything
}

// Products returns the requested page and the total before paging.
func (s *Store) Products(q ProductQuery) ([]shopapi.Product, int) {
	s.mu.RLock()
	var all []shopapi.Product
	for _, p := range s.products {
		if q.Class != "" && !strings.EqualFold(p.Class, q.Class) {
			continue
		}
		if !contains(p.Name, q.Name) {
			continue
		}
		if q.MinPrice.Valid && p.Price.LessThan(q.MinPrice.Decimal) {
			continue
		}
		if q.MaxPrice.Valid && p.Price.GreaterThan(q.MaxPrice.Decimal) {
			continue
		}
		all = append(all, *p)
	}
	s.mu.RUnlock()

	less := func(i, j int) bool { return all[i].ID < all[j].ID }
	switch q.SortBy {
	case "product_price":
		less = func(i, j int) bool {
			if c := all[i].Price.Cmp(all[j].Price); c != 0 {
				return c < 0
			}
			return all[i].ID < all[j].ID
		}
	case "product_name":
		less = func(i, j int) bool { return all[i].Name < all[j].Name }
	}
	sort.SliceStable(all, func(i, j int) bool {
		if q.Desc {
			return less(j, i)
		}
		return less(i, j)
	})

	total := len(all)
	if q.PageSize <= 0 {
		return all, total
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * q.PageSize
	if start >= total {
		return []shopapi.Product{}, total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total
}

// ToggleLike flips the like of (user, product) and returns the new state and
// the product's like count.
func (s *Store) ToggleLike(userID, productID int64) (liked bool, count int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return false, 0, errNotFound
	}
	p, ok := s.products[productID]
	if !ok {
		return false, 0, errNotFound
	}

	k := likeKey{userID, productID}
	if s.likes[k] {
		delete(s.likes, k)
		p.LikeCount--
	} else {
		s.likes[k] = true
		p.LikeCount++
	}
	return s.likes[k], p.LikeCount, nil
}

// ─── Cart and orders ──────────────────────────────────────────────────────────

// AddToCart adds every item to the user's cart and returns the cart.
func (s *Store) AddToCart(p shopapi.OrderPayload) ([]shopapi.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPayload(p); err != nil {
		return nil, err
	}
	for _, it := range p.Items {
		s.cart[cartKey{p.UserID, it.ProductID}] += it.ProductNumber
	}
	return s.cartOf(p.UserID), nil
}

func (s *Store) SetCartQuantity(userID, productID int64, quantity int) ([]shopapi.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := cartKey{userID, productID}
	if _, ok := s.cart[k]; !ok {
		return nil, errNotFound
	}
	s.cart[k] = quantity
	return s.cartOf(userID), nil
}

func (s *Store) RemoveFromCart(userID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := cartKey{userID, productID}
	if _, ok := s.cart[k]; !ok {
		return errNotFound
	}
	delete(s.cart, k)
	return nil
}

// PlaceOrder creates one pending order per item.
func (s *Store) PlaceOrder(p shopapi.OrderPayload) ([]shopapi.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPayload(p); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	out := make([]shopapi.Order, 0, len(p.Items))
	for _, it := range p.Items {
		s.nextOrder++
		o := &shopapi.Order{
			ID:            s.nextOrder,
			UserID:        p.UserID,
			ProductID:     it.ProductID,
			ProductNumber: it.ProductNumber,
			Address:       p.Address,
			State:         shopapi.OrderStatePending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		s.orders[o.ID] = o
		delete(s.cart, cartKey{p.UserID, it.ProductID})
		out = append(out, *o)
	}
	return out, nil
}

func (s *Store) checkPayload(p shopapi.OrderPayload) error {
	if _, ok := s.users[p.UserID]; !ok {
		return errNotFound
	}
	for _, it := range p.Items {
		if _, ok := s.products[it.ProductID]; !ok {
			return errNotFound
		}
	}
	return nil
}

func (s *Store) cartOf(userID int64) []shopapi.CartItem {
	out := []shopapi.CartItem{}
	for k, n := range s.cart {
		if k.userID == userID {
			out = append(out, shopapi.CartItem{ProductID: k.productID, UserID: userID, Quantity: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (s *Store) Order(id int64) (shopapi.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return shopapi.Order{}, errNotFound
	}
	return *o, nil
}

// Orders returns orders matching state and user; zero values match all.
func (s *Store) Orders(state shopapi.OrderState, userID int64) []shopapi.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []shopapi.Order{}
	for _, o := range s.orders {
		if state != "" && o.State != state {
			continue
		}
		if userID != 0 && o.UserID != userID {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetOrderState moves an order to state. Transitions are not checked.
func (s *Store) SetOrderState(id int64, state shopapi.OrderState) (shopapi.Order, error) {
	if !knownStates[state] {
		return shopapi.Order{}, errUnknownState
	}
	return s.updateOrder(id, func(o *shopapi.Order) error {
		o.State = state
		return nil
	})
}

// SetOrderAddress changes the address of a pending order.
func (s *Store) SetOrderAddress(id int64, address string) (shopapi.Order, error) {
	return s.updateOrder(id, func(o *shopapi.Order) error {
		if o.State != shopapi.OrderStatePending {
			return errNotPending
		}
		o.Address = address
		return nil
	})
}

func (s *Store) updateOrder(id int64, fn func(o *shopapi.Order) error) (shopapi.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return shopapi.Order{}, errNotFound
	}
	if err := fn(o); err != nil {
		return shopapi.Order{}, err
	}
	o.UpdatedAt = s.now().UTC()
	return *o, nil
}

func (s *Store) DeleteOrder(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return errNotFound
	}
	delete(s.orders, id)
	return nil
}

func contains(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
