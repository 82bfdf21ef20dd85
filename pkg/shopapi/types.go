package shopapi

import (
	"io"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	sfhttp "github.com/shashiranjanraj/storefront/pkg/http"
)

// OrderState is the backend's label for where an order is in its lifecycle.
// The client passes it through and never checks transitions:
//
//	pending → awaiting receipt → completed
//	cancelled is reachable from any state before completed
type OrderState string

const (
	OrderStatePending         OrderState = "pending"
	OrderStateAwaitingReceipt OrderState = "awaiting receipt"
	OrderStateCompleted       OrderState = "completed"
	OrderStateCancelled       OrderState = "cancelled"
)

// Order is one order line as the backend returns it.
type Order struct {
	ID            int64      `json:"order_id"`
	UserID        int64      `json:"user_id"`
	ProductID     int64      `json:"product_id"`
	ProductNumber int        `json:"product_number"`
	Address       string     `json:"address"`
	State         OrderState `json:"order_state"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty"`
}

// OrderItem is one product line of an OrderPayload.
type OrderItem struct {
	ProductID     int64 `json:"product_id"`
	ProductNumber int   `json:"product_number"`
}

// OrderPayload creates orders, either straight away (BuyNow) or as cart
// lines (AddOrder). It is sent as JSON.
type OrderPayload struct {
	UserID  int64       `json:"user_id"`
	Address string      `json:"address,omitempty"`
	Items   []OrderItem `json:"items"`
}

// CartItem is one cart line.
type CartItem struct {
	ProductID int64 `json:"product_id"`
	UserID    int64 `json:"user_id"`
	Quantity  int   `json:"product_number"`
}

// Product is a catalog entry.
type Product struct {
	ID          int64           `json:"product_id"`
	Class       string          `json:"product_class"`
	Name        string          `json:"product_name"`
	Description string          `json:"product_description,omitempty"`
	Price       decimal.Decimal `json:"product_price"`
	Picture     string          `json:"product_picture,omitempty"`
	LikeCount   int             `json:"product_star,omitempty"`
}

// fields returns the form encoding used by UpdateProduct.
func (p Product) fields() Fields {
	f := Fields{
		"product_id":    strconv.FormatInt(p.ID, 10),
		"product_class": p.Class,
		"product_name":  p.Name,
		"product_price": p.Price.String(),
	}
	if p.Description != "" {
		f["product_description"] = p.Description
	}
	return f
}

// User is a storefront account.
type User struct {
	ID        int64    `json:"user_id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	Avatar    string   `json:"avatar,omitempty"`
	Address   string   `json:"address,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
	Status    string   `json:"status,omitempty"`
	IsManager bool     `json:"isManager"`
}

// Registration is the sign-up form.
type Registration struct {
	Email    string
	Password string
	Username string
}

func (r Registration) fields() Fields {
	f := Fields{"email": r.Email, "password": r.Password}
	if r.Username != "" {
		f["username"] = r.Username
	}
	return f
}

// Credentials is the login form.
type Credentials struct {
	Email     string
	Password  string
	IsManager bool
}

// UserQuery filters SearchUserList. Empty fields are not sent.
type UserQuery struct {
	Username string
	Email    string
	Status   string
}

func (q UserQuery) values() url.Values {
	v := url.Values{}
	setIf(v, "username", q.Username)
	setIf(v, "email", q.Email)
	setIf(v, "status", q.Status)
	return v
}

// ProductFilter narrows and pages product listings. Zero values are not sent.
type ProductFilter struct {
	Page     int
	PageSize int
	SortBy   string
	Order    string
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
}

func (f ProductFilter) values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(f.PageSize))
	}
	setIf(v, "sort_by", f.SortBy)
	setIf(v, "order", f.Order)
	if f.MinPrice.Valid {
		v.Set("min_price", f.MinPrice.Decimal.String())
	}
	if f.MaxPrice.Valid {
		v.Set("max_price", f.MaxPrice.Decimal.String())
	}
	return v
}

// Upload is a file sent as one multipart part.
type Upload struct {
	Name        string
	ContentType string
	Content     io.Reader
}

func (u Upload) part(field string) sfhttp.File {
	return sfhttp.File{Field: field, Name: u.Name, ContentType: u.ContentType, Content: u.Content}
}

// Fields is a flat string mapping for field-encoded and multipart bodies.
// Keys are encoded in sorted order.
type Fields map[string]string

func (f Fields) encode() []sfhttp.Field {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]sfhttp.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, sfhttp.Field{Key: k, Value: f[k]})
	}
	return out
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func formatID(n int64) string { return strconv.FormatInt(n, 10) }
