package mockserver

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

func (s *Server) mountOrders(api *router.Group) {
	api.Post("/shop/add/order", "order.buy-now", s.buyNow)

	o := api.Group("/order")
	o.Post("/add/order", "order.add-to-cart", s.addToCart)
	o.Delete("/delete/double_id", "order.cart-remove", s.removeCartItem)
	o.Put("/update/product_id", "order.cart-quantity", s.setCartQuantity)
	o.Put("/update/state", "order.update-state", s.updateOrderState)
	o.Put("/update/address", "order.update-address", s.updateOrderAddress)
	o.Delete("/delete/order_id", "order.delete", s.deleteOrder)
	o.Get("/find-byorderid", "order.find-by-id", s.findOrder)
	o.Get("/find-all", "order.find-all", s.findAllOrders)
	o.Get("/find-byuserid", "order.find-by-user", s.findOrdersByUser)
	o.Get("/find-bystate", "order.find-by-state", s.findOrdersByState)
	o.Get("/manager/find-bystate", "order.manager.find-by-state", s.findOrdersByState, middleware.RequireManager)
	o.Put("/deliver", "order.deliver", s.deliver)
}

type orderPayload struct {
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Address string `json:"address"`
	Items   []struct {
		ProductID     int64 `json:"product_id" validate:"required,gt=0"`
		ProductNumber int   `json:"product_number" validate:"required,gt=0"`
	} `json:"items" validate:"required,min=1,dive"`
}

func (in orderPayload) toShop() shopapi.OrderPayload {
	p := shopapi.OrderPayload{UserID: in.UserID, Address: in.Address}
	for _, it := range in.Items {
		p.Items = append(p.Items, shopapi.OrderItem{ProductID: it.ProductID, ProductNumber: it.ProductNumber})
	}
	return p
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var in orderPayload
	if errs, err := bind.JSON(r, &in); !bound(w, errs, err) {
		return
	}
	cart, err := s.store.AddToCart(in.toShop())
	if err != nil {
		reject(w, r, err, "user or product")
		return
	}
	response.Success(w, "added to cart", cart)
}

func (s *Server) buyNow(w http.ResponseWriter, r *http.Request) {
	var in orderPayload
	if errs, err := bind.JSON(r, &in); !bound(w, errs, err) {
		return
	}
	orders, err := s.store.PlaceOrder(in.toShop())
	if err != nil {
		reject(w, r, err, "user or product")
		return
	}
	response.Success(w, "order placed", orders)
}

type cartLine struct {
	ProductID int64 `form:"product_id" validate:"required,gt=0"`
	UserID    int64 `form:"user_id" validate:"required,gt=0"`
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	var in cartLine
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	if err := s.store.RemoveFromCart(in.UserID, in.ProductID); err != nil {
		reject(w, r, err, "cart item")
		return
	}
	response.Success(w, "removed from cart", nil)
}

func (s *Server) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID int64 `form:"product_id" validate:"required,gt=0"`
		UserID    int64 `form:"user_id" validate:"required,gt=0"`
		Quantity  int   `form:"product_number" validate:"gte=0"`
	}
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	cart, err := s.store.SetCartQuantity(in.UserID, in.ProductID, in.Quantity)
	if err != nil {
		reject(w, r, err, "cart item")
		return
	}
	response.Success(w, "quantity updated", cart)
}

type orderState struct {
	OrderID int64              `form:"order_id" validate:"required,gt=0"`
	State   shopapi.OrderState `form:"order_state" validate:"required"`
}

func (s *Server) updateOrderState(w http.ResponseWriter, r *http.Request) {
	var in orderState
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	s.setState(w, r, in)
}

func (s *Server) deliver(w http.ResponseWriter, r *http.Request) {
	var in orderState
	if errs, err := bind.Query(r, &in); !bound(w, errs, err) {
		return
	}
	s.setState(w, r, in)
}

func (s *Server) setState(w http.ResponseWriter, r *http.Request, in orderState) {
	o, err := s.store.SetOrderState(in.OrderID, in.State)
	if err != nil {
		reject(w, r, err, "order")
		return
	}
	response.Success(w, "order state updated", o)
}

func (s *Server) updateOrderAddress(w http.ResponseWriter, r *http.Request) {
	var in struct {
		OrderID int64  `form:"order_id" validate:"required,gt=0"`
		Address string `form:"address" validate:"required"`
	}
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	o, err := s.store.SetOrderAddress(in.OrderID, in.Address)
	if err != nil {
		reject(w, r, err, "order")
		return
	}
	response.Success(w, "address updated", o)
}

type orderRef struct {
	OrderID int64 `form:"order_id" validate:"required,gt=0"`
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	var in orderRef
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	if err := s.store.DeleteOrder(in.OrderID); err != nil {
		reject(w, r, err, "order")
		return
	}
	response.Success(w, "order deleted", nil)
}

func (s *Server) findOrder(w http.ResponseWriter, r *http.Request) {
	var in orderRef
	if errs, err := bind.Query(r, &in); !bound(w, errs, err) {
		return
	}
	o, err := s.store.Order(in.OrderID)
	if err != nil {
		reject(w, r, err, "order")
		return
	}
	response.Success(w, "", o)
}

func (s *Server) findAllOrders(w http.ResponseWriter, _ *http.Request) {
	orders := s.store.Orders("", 0)
	response.List(w, orders, len(orders))
}

func (s *Server) findOrdersByUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID int64 `form:"user_id" validate:"required,gt=0"`
	}
	if errs, err := bind.Query(r, &in); !bound(w, errs, err) {
		return
	}
	orders := s.store.Orders("", in.UserID)
	response.List(w, orders, len(orders))
}

// findOrdersByState serves both the shopper and the manager listing.
func (s *Server) findOrdersByState(w http.ResponseWriter, r *http.Request) {
	var in struct {
		State  shopapi.OrderState `form:"order_state" validate:"required"`
		UserID int64              `form:"user_id" validate:"gte=0"`
	}
	if errs, err := bind.Query(r, &in); !bound(w, errs, err) {
		return
	}
	orders := s.store.Orders(in.State, in.UserID)
	response.List(w, orders, len(orders))
}
