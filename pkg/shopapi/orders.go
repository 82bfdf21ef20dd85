package shopapi

import (
	"context"
)

// OrderService covers cart lines, orders and the deliver transitions.
type OrderService struct{ c *Client }

// AddOrder adds the payload's items to the user's cart.
func (s *OrderService) AddOrder(ctx context.Context, p OrderPayload) (*Envelope, error) {
	return s.c.do(ctx, call{
		name:     "AddOrder",
		kind:     mutation,
		success:  "added to cart",
		fallback: "could not add to cart",
	}, s.c.hc.Post("/api/order/add/order").JSON(p))
}

// BuyNow places an order for the payload's items straight away.
func (s *OrderService) BuyNow(ctx context.Context, p OrderPayload) (*Envelope, error) {
	return s.c.do(ctx, call{
		name:     "BuyNow",
		kind:     mutation,
		success:  "order placed",
		fallback: "could not place order",
	}, s.c.hc.Post("/api/shop/add/order").JSON(p))
}

// DeleteCartItem removes one cart line.
func (s *OrderService) DeleteCartItem(ctx context.Context, productID, userID int64) (*Envelope, error) {
	body := Fields{"product_id": formatID(productID), "user_id": formatID(userID)}
	return s.c.do(ctx, call{
		name:     "DeleteCartItem",
		kind:     mutation,
		success:  "removed from cart",
		fallback: "could not remove cart item",
	}, s.c.hc.Delete("/api/order/delete/double_id").Multipart(body.encode()))
}

// UpdateOrderQuantity sets the absolute quantity of a cart line.
func (s *OrderService) UpdateOrderQuantity(ctx context.Context, productID, userID int64, quantity int) (*Envelope, error) {
	body := Fields{
		"product_id":     formatID(productID),
		"user_id":        formatID(userID),
		"product_number": formatID(int64(quantity)),
	}
	return s.c.do(ctx, call{
		name:     "UpdateOrderQuantity",
		kind:     mutation,
		success:  "quantity updated",
		fallback: "could not update quantity",
	}, s.c.hc.Put("/api/order/update/product_id").Multipart(body.encode()))
}

// UpdateOrderStatus sends each field as its own multipart part.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, fields Fields) (*Envelope, error) {
	return s.c.do(ctx, call{
		name:     "UpdateOrderStatus",
		kind:     mutation,
		success:  "order updated",
		fallback: "could not update order",
	}, s.c.hc.Put("/api/order/update/state").Multipart(fields.encode()))
}

// UpdateOrderAddress replaces the shipping address of an order.
func (s *OrderService) UpdateOrderAddress(ctx context.Context, orderID int64, address string) (*Envelope, error) {
	body := Fields{"order_id": formatID(orderID), "address": address}
	return s.c.do(ctx, call{
		name:     "UpdateOrderAddress",
		kind:     mutation,
		success:  "address updated",
		fallback: "could not update address",
	}, s.c.hc.Put("/api/order/update/address").Multipart(body.encode()))
}

// DeleteOrder removes an order.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) (*Envelope, error) {
	body := Fields{"order_id": formatID(orderID)}
	return s.c.do(ctx, call{
		name:     "DeleteOrder",
		kind:     mutation,
		success:  "order deleted",
		fallback: "could not delete order",
	}, s.c.hc.Delete("/api/order/delete/order_id").Multipart(body.encode()))
}

func (s *OrderService) FindOrderByID(ctx context.Context, orderID int64) (*Envelope, error) {
	return s.c.do(ctx, call{name: "FindOrderByID", fallback: "could not load order"},
		s.c.hc.Get("/api/order/find-byorderid").Query("order_id", formatID(orderID)))
}

func (s *OrderService) FindAllOrders(ctx context.Context) (*Envelope, error) {
	return s.c.do(ctx, call{name: "FindAllOrders", fallback: "could not load orders"},
		s.c.hc.Get("/api/order/find-all"))
}

func (s *OrderService) FindOrdersByUserID(ctx context.Context, userID int64) (*Envelope, error) {
	return s.c.do(ctx, call{name: "FindOrdersByUserID", fallback: "could not load orders"},
		s.c.hc.Get("/api/order/find-byuserid").Query("user_id", formatID(userID)))
}

// FindOrdersByState lists orders in state. A zero userID lists every user's.
func (s *OrderService) FindOrdersByState(ctx context.Context, state OrderState, userID int64) (*Envelope, error) {
	req := s.c.hc.Get("/api/order/find-bystate").Query("order_state", string(state))
	if userID != 0 {
		req.Query("user_id", formatID(userID))
	}
	return s.c.do(ctx, call{name: "FindOrdersByState", fallback: "could not load orders"}, req)
}

// ManagerFindOrdersByState is FindOrdersByState on the manager endpoint.
func (s *OrderService) ManagerFindOrdersByState(ctx context.Context, state OrderState, userID int64) (*Envelope, error) {
	req := s.c.hc.Get("/api/order/manager/find-bystate").Query("order_state", string(state))
	if userID != 0 {
		req.Query("user_id", formatID(userID))
	}
	return s.c.do(ctx, call{name: "ManagerFindOrdersByState", fallback: "could not load orders"}, req)
}

// MarkOrderAsShipped moves the order to awaiting receipt.
func (s *OrderService) MarkOrderAsShipped(ctx context.Context, orderID int64) (*Envelope, error) {
	return s.deliver(ctx, "MarkOrderAsShipped", orderID, OrderStateAwaitingReceipt, "order shipped")
}

// CancelOrderByDeliver moves the order to cancelled.
func (s *OrderService) CancelOrderByDeliver(ctx context.Context, orderID int64) (*Envelope, error) {
	return s.deliver(ctx, "CancelOrderByDeliver", orderID, OrderStateCancelled, "order cancelled")
}

// ConfirmReceiptByDeliver moves the order to completed.
func (s *OrderService) ConfirmReceiptByDeliver(ctx context.Context, orderID int64) (*Envelope, error) {
	return s.deliver(ctx, "ConfirmReceiptByDeliver", orderID, OrderStateCompleted, "receipt confirmed")
}

// deliver is the one transition endpoint: PUT, no body, target in the query.
func (s *OrderService) deliver(ctx context.Context, name string, orderID int64, to OrderState, success string) (*Envelope, error) {
	req := s.c.hc.Put("/api/order/deliver").
		Query("order_id", formatID(orderID)).
		Query("order_state", string(to))
	return s.c.do(ctx, call{
		name:     name,
		kind:     mutation,
		success:  success,
		fallback: "could not update order state",
	}, req)
}
