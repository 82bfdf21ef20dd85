package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

var (
	orderUserFlag    int64
	orderProductFlag int64
	orderQtyFlag     int
	orderAddressFlag string
	orderStateFlag   string
	orderManagerFlag bool
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Cart lines, orders and delivery",
}

func payloadFromFlags() shopapi.OrderPayload {
	return shopapi.OrderPayload{
		UserID:  orderUserFlag,
		Address: orderAddressFlag,
		Items:   []shopapi.OrderItem{{ProductID: orderProductFlag, ProductNumber: orderQtyFlag}},
	}
}

// storefront orders add --user 2 --product 3 --qty 1
var orderAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product to the user's cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Orders.AddOrder(ctx, payloadFromFlags())
		})
	},
}

// storefront orders buy --user 2 --product 3 --qty 1 --address "1 Market Street"
var orderBuyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Place an order straight away",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Orders.BuyNow(ctx, payloadFromFlags())
		})
	},
}

var orderCartRemoveCmd = &cobra.Command{
	Use:   "cart-remove",
	Short: "Remove a cart line",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Orders.DeleteCartItem(ctx, orderProductFlag, orderUserFlag)
		})
	},
}

var orderCartQtyCmd = &cobra.Command{
	Use:   "cart-qty",
	Short: "Set the quantity of a cart line",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Orders.UpdateOrderQuantity(ctx, orderProductFlag, orderUserFlag, orderQtyFlag)
		})
	},
}

var orderGetCmd = &cobra.Command{
	Use:   "get <order-id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error) {
		return c.Orders.FindOrderByID(ctx, id)
	}),
}

// storefront orders list [--user 2] [--state pending [--manager]]
var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders, optionally by user or state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			state := shopapi.OrderState(orderStateFlag)
			switch {
			case state != "" && orderManagerFlag:
				return c.Orders.ManagerFindOrdersByState(ctx, state, orderUserFlag)
			case state != "":
				return c.Orders.FindOrdersByState(ctx, state, orderUserFlag)
			case orderUserFlag != 0:
				return c.Orders.FindOrdersByUserID(ctx, orderUserFlag)
			}
			return c.Orders.FindAllOrders(ctx)
		})
	},
}

var orderShipCmd = &cobra.Command{
	Use:   "ship <order-id>",
	Short: "Mark an order as shipped",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error) {
		return c.Orders.MarkOrderAsShipped(ctx, id)
	}),
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel an order",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error) {
		return c.Orders.CancelOrderByDeliver(ctx, id)
	}),
}

var orderConfirmCmd = &cobra.Command{
	Use:   "confirm <order-id>",
	Short: "Confirm receipt of an order",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error) {
		return c.Orders.ConfirmReceiptByDeliver(ctx, id)
	}),
}

// storefront orders set-state 7 completed
var orderSetStateCmd = &cobra.Command{
	Use:   "set-state <order-id> <state>",
	Short: "Set any order state through the update endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := parseID(args[0]); err != nil {
			return err
		}
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Orders.UpdateOrderStatus(ctx, shopapi.Fields{"order_id": args[0], "order_state": args[1]})
		})
	},
}

var orderAddressCmd = &cobra.Command{
	Use:   "set-address <order-id> <address>",
	Short: "Change the shipping address of a pending order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Orders.UpdateOrderAddress(ctx, id, args[1])
		})
	},
}

var orderDeleteCmd = &cobra.Command{
	Use:   "delete <order-id>",
	Short: "Delete an order",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error) {
		return c.Orders.DeleteOrder(ctx, id)
	}),
}

// withID adapts a single-ID operation to a RunE.
func withID(fn func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return fn(ctx, c, id)
		})
	}
}

func init() {
	for _, c := range []*cobra.Command{orderAddCmd, orderBuyCmd} {
		c.Flags().Int64Var(&orderUserFlag, "user", 0, "User ID")
		c.Flags().Int64Var(&orderProductFlag, "product", 0, "Product ID")
		c.Flags().IntVar(&orderQtyFlag, "qty", 1, "Quantity")
		c.Flags().StringVar(&orderAddressFlag, "address", "", "Shipping address")
		_ = c.MarkFlagRequired("user")
		_ = c.MarkFlagRequired("product")
	}
	for _, c := range []*cobra.Command{orderCartRemoveCmd, orderCartQtyCmd} {
		c.Flags().Int64Var(&orderUserFlag, "user", 0, "User ID")
		c.Flags().Int64Var(&orderProductFlag, "product", 0, "Product ID")
		_ = c.MarkFlagRequired("user")
		_ = c.MarkFlagRequired("product")
	}
	orderCartQtyCmd.Flags().IntVar(&orderQtyFlag, "qty", 1, "New absolute quantity")

	orderListCmd.Flags().Int64Var(&orderUserFlag, "user", 0, "Only this user's orders")
	orderListCmd.Flags().StringVar(&orderStateFlag, "state", "", "Only orders in this state")
	orderListCmd.Flags().BoolVar(&orderManagerFlag, "manager", false, "Use the manager endpoint (needs --token)")

	ordersCmd.AddCommand(orderAddCmd, orderBuyCmd, orderCartRemoveCmd, orderCartQtyCmd,
		orderGetCmd, orderListCmd, orderShipCmd, orderCancelCmd, orderConfirmCmd,
		orderSetStateCmd, orderAddressCmd, orderDeleteCmd)
}
