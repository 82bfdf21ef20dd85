package shopapi_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/shopapi"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

const baseURL = "http://shop.test"

func newClient(t *testing.T, timeout time.Duration) (*shopapi.Client, *testkit.MockTransport, *testkit.RecordingSink) {
	t.Helper()
	mt := testkit.NewMockTransport()
	sink := testkit.NewRecordingSink()
	c, err := shopapi.New(shopapi.Config{BaseURL: baseURL, Timeout: timeout},
		shopapi.WithTransport(mt), shopapi.WithSink(sink))
	require.NoError(t, err)
	return c, mt, sink
}

type operation struct {
	name   string
	method string
	path   string
	invoke func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error)
	check  func(t *testing.T, call testkit.Call)
}

func mutations() []operation {
	payload := shopapi.OrderPayload{UserID: 7, Address: "Main St 1", Items: []shopapi.OrderItem{{ProductID: 3, ProductNumber: 2}}}
	jsonBody := func(t *testing.T, call testkit.Call) {
		assert.Equal(t, "application/json", call.ContentType)
		assert.JSONEq(t, `{"user_id":7,"address":"Main St 1","items":[{"product_id":3,"product_number":2}]}`, string(call.Body))
	}
	picture := func() shopapi.Upload {
		return shopapi.Upload{Name: "p.png", ContentType: "image/png", Content: strings.NewReader("PNG")}
	}

	return []operation{
		{"AddOrder", http.MethodPost, "/api/order/add/order",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.AddOrder(ctx, payload)
			}, jsonBody},
		{"BuyNow", http.MethodPost, "/api/shop/add/order",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.BuyNow(ctx, payload)
			}, jsonBody},
		{"DeleteCartItem", http.MethodDelete, "/api/order/delete/double_id",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.DeleteCartItem(ctx, 3, 7)
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "multipart/form-data", call.ContentType)
				assert.Equal(t, "3", call.Form.Get("product_id"))
				assert.Equal(t, "7", call.Form.Get("user_id"))
			}},
		{"UpdateOrderQuantity", http.MethodPut, "/api/order/update/product_id",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.UpdateOrderQuantity(ctx, 3, 7, 5)
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "multipart/form-data", call.ContentType)
				assert.Equal(t, "5", call.Form.Get("product_number"))
			}},
		{"UpdateOrderStatus", http.MethodPut, "/api/order/update/state",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.UpdateOrderStatus(ctx, shopapi.Fields{"order_id": "9", "order_state": "pending"})
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "multipart/form-data", call.ContentType)
				assert.Equal(t, "9", call.Form.Get("order_id"))
				assert.Equal(t, "pending", call.Form.Get("order_state"))
			}},
		{"UpdateOrderAddress", http.MethodPut, "/api/order/update/address",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.UpdateOrderAddress(ctx, 9, "Elm St 2")
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "multipart/form-data", call.ContentType)
				assert.Equal(t, "Elm St 2", call.Form.Get("address"))
			}},
		{"DeleteOrder", http.MethodDelete, "/api/order/delete/order_id",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.DeleteOrder(ctx, 9)
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "multipart/form-data", call.ContentType)
				assert.Equal(t, "9", call.Form.Get("order_id"))
			}},
		{"MarkOrderAsShipped", http.MethodPut, "/api/order/deliver",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.MarkOrderAsShipped(ctx, 9)
			}, nil},
		{"AddProduct", http.MethodPost, "/api/product/addProduct",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Products.AddProduct(ctx, shopapi.Product{Name: "Tea", Class: "drinks", Price: decimal.RequireFromString("4.50")})
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "application/json", call.ContentType)
				assert.Contains(t, string(call.Body), `"product_price":"4.5"`)
			}},
		{"AddProductPicture", http.MethodPut, "/api/product/add/product_picture",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Products.AddProductPicture(ctx, 3, picture())
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "3", call.Form.Get("product_id"))
				require.Contains(t, call.Files, "product_picture")
				assert.Equal(t, "PNG", string(call.Files["product_picture"].Content))
				assert.Equal(t, "p.png", call.Files["product_picture"].Name)
			}},
		{"UpdateProduct", http.MethodPut, "/api/product/update/productinfo",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Products.UpdateProduct(ctx, shopapi.Product{ID: 3, Name: "Tea", Class: "drinks", Price: decimal.RequireFromString("5")})
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "application/x-www-form-urlencoded", call.ContentType)
				assert.Equal(t, "3", call.Form.Get("product_id"))
				assert.Equal(t, "5", call.Form.Get("product_price"))
			}},
		{"DeleteProduct", http.MethodDelete, "/api/product/delete/product_id",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Products.DeleteProduct(ctx, 3)
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "3", call.Query.Get("product_id"))
				assert.Empty(t, call.Body)
			}},
		{"ToggleProductLike", http.MethodPost, "/api/product_star/star",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Likes.ToggleProductLike(ctx, 7, 3)
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "application/x-www-form-urlencoded", call.ContentType)
				assert.Equal(t, "7", call.Form.Get("user_id"))
				assert.Equal(t, "3", call.Form.Get("product_id"))
			}},
		{"UpdatePassword", http.MethodPut, "/api/user/update/password",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.UpdatePassword(ctx, 7, "old", "new")
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "multipart/form-data", call.ContentType)
				assert.Equal(t, "old", call.Form.Get("password"))
				assert.Equal(t, "new", call.Form.Get("new_password"))
			}},
		{"UpdateUsername", http.MethodPut, "/api/user/update/username",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.UpdateUsername(ctx, 7, "ana")
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "application/x-www-form-urlencoded", call.ContentType)
				assert.Equal(t, "ana", call.Form.Get("username"))
			}},
		{"UpdateAvatar", http.MethodPut, "/api/user/update/avatar",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.UpdateAvatar(ctx, 7, picture())
			}, func(t *testing.T, call testkit.Call) {
				require.Contains(t, call.Files, "avatar")
				assert.Equal(t, "image/png", call.Files["avatar"].ContentType)
			}},
		{"UpdateStatus", http.MethodPut, "/api/user/update/status",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.UpdateStatus(ctx, 7, "banned")
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "banned", call.Form.Get("status"))
			}},
		{"UpdateAddress", http.MethodPut, "/api/user/update/address",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.UpdateAddress(ctx, 7, "Main St 1")
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "application/x-www-form-urlencoded", call.ContentType)
			}},
		{"AddAddress", http.MethodPost, "/api/user/add/address",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.AddAddress(ctx, 7, "Main St 1")
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "Main St 1", call.Form.Get("address"))
			}},
		{"DeleteAddress", http.MethodDelete, "/api/user/delete/address",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.DeleteAddress(ctx, 7, "Main St 1")
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "multipart/form-data", call.ContentType)
			}},
		{"DeleteUser", http.MethodDelete, "/api/user/delete/user_id",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.DeleteUser(ctx, 7)
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "multipart/form-data", call.ContentType)
				assert.Equal(t, "7", call.Form.Get("user_id"))
			}},
		{"RegisterUser", http.MethodPost, "/api/user/register",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.RegisterUser(ctx, shopapi.Registration{Email: "a@b.c", Password: "pw"})
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "application/x-www-form-urlencoded", call.ContentType)
				assert.Equal(t, "a@b.c", call.Form.Get("email"))
			}},
	}
}

func queries() []operation {
	return []operation{
		{"FindOrderByID", http.MethodGet, "/api/order/find-byorderid",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.FindOrderByID(ctx, 9)
			}, func(t *testing.T, call testkit.Call) { assert.Equal(t, "9", call.Query.Get("order_id")) }},
		{"FindAllOrders", http.MethodGet, "/api/order/find-all",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.FindAllOrders(ctx)
			}, nil},
		{"FindOrdersByUserID", http.MethodGet, "/api/order/find-byuserid",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.FindOrdersByUserID(ctx, 7)
			}, func(t *testing.T, call testkit.Call) { assert.Equal(t, "7", call.Query.Get("user_id")) }},
		{"FindOrdersByState", http.MethodGet, "/api/order/find-bystate",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.FindOrdersByState(ctx, shopapi.OrderStatePending, 0)
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "pending", call.Query.Get("order_state"))
				assert.NotContains(t, call.Query, "user_id")
			}},
		{"ManagerFindOrdersByState", http.MethodGet, "/api/order/manager/find-bystate",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Orders.ManagerFindOrdersByState(ctx, shopapi.OrderStateAwaitingReceipt, 7)
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "awaiting receipt", call.Query.Get("order_state"))
				assert.Equal(t, "7", call.Query.Get("user_id"))
			}},
		{"FindAllProducts", http.MethodGet, "/api/product/find-all",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Products.FindAllProducts(ctx, shopapi.ProductFilter{Page: 2, PageSize: 10})
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "2", call.Query.Get("page"))
				assert.Equal(t, "10", call.Query.Get("page_size"))
				assert.NotContains(t, call.Query, "min_price")
			}},
		{"FindProductsByClass", http.MethodGet, "/api/product/find-byclass",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Products.FindProductsByClass(ctx, "drinks", shopapi.ProductFilter{MinPrice: decimal.NewNullDecimal(decimal.RequireFromString("1.5"))})
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "drinks", call.Query.Get("product_class"))
				assert.Equal(t, "1.5", call.Query.Get("min_price"))
			}},
		{"FindProductByID", http.MethodGet, "/api/product/find-byid",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Products.FindProductByID(ctx, 3)
			}, func(t *testing.T, call testkit.Call) { assert.Equal(t, "3", call.Query.Get("product_id")) }},
		{"SearchProducts", http.MethodGet, "/api/product/search",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Products.SearchProducts(ctx, "tea", shopapi.ProductFilter{})
			}, func(t *testing.T, call testkit.Call) { assert.Equal(t, "tea", call.Query.Get("product_name")) }},
		{"GetUserList", http.MethodGet, "/api/user/find-all",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.GetUserList(ctx)
			}, nil},
		{"SearchUserList", http.MethodGet, "/api/user/search",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.SearchUserList(ctx, shopapi.UserQuery{Username: "ana"})
			}, func(t *testing.T, call testkit.Call) { assert.Equal(t, "ana", call.Query.Get("username")) }},
		{"FindUserByID", http.MethodGet, "/api/user/find-byid",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.FindUserByID(ctx, 7)
			}, func(t *testing.T, call testkit.Call) { assert.Equal(t, "7", call.Query.Get("user_id")) }},
		{"Login", http.MethodPost, "/api/user/login",
			func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
				return c.Users.Login(ctx, shopapi.Credentials{Email: "a@b.c", Password: "pw", IsManager: true})
			}, func(t *testing.T, call testkit.Call) {
				assert.Equal(t, "multipart/form-data", call.ContentType)
				assert.Equal(t, "true", call.Form.Get("isManager"))
			}},
	}
}

func TestMutations_SuccessNotifiesOnce(t *testing.T) {
	for _, op := range mutations() {
		t.Run(op.name, func(t *testing.T) {
			c, mt, sink := newClient(t, 0)
			mt.Reply(op.method, op.path, 200, `{"code":200,"message":"done","data":{"id":1}}`)

			env, err := op.invoke(context.Background(), c)
			require.NoError(t, err)
			require.NotNil(t, env)
			assert.Equal(t, shopapi.CodeOK, env.Code)

			assert.Len(t, sink.Successes(), 1)
			assert.Empty(t, sink.Failures())
			assert.Equal(t, op.name, sink.Successes()[0].Operation)

			call := mt.LastCall()
			assert.Equal(t, op.method, call.Method)
			assert.Equal(t, "application/json", call.Header.Get("Accept"))
			assert.NotEmpty(t, call.Header.Get(reqid.Header))
			if op.check != nil {
				op.check(t, call)
			}
		})
	}
}

func TestMutations_RejectedCodeNotifiesFailure(t *testing.T) {
	for _, op := range mutations() {
		t.Run(op.name, func(t *testing.T) {
			c, mt, sink := newClient(t, 0)
			mt.Reply(op.method, op.path, 200, `{"code":409,"message":"X"}`)

			env, err := op.invoke(context.Background(), c)
			assert.Nil(t, env)
			require.Error(t, err)

			var e *shopapi.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, "X", e.Message)
			assert.Equal(t, shopapi.KindValidation, e.Kind)
			assert.Equal(t, 409, e.Code)
			assert.Equal(t, op.name, e.Op)

			require.Len(t, sink.Failures(), 1)
			assert.Equal(t, "X", sink.Failures()[0].Message)
			assert.Empty(t, sink.Successes())
		})
	}
}

func TestQueries_SilentOnSuccess(t *testing.T) {
	for _, op := range queries() {
		t.Run(op.name, func(t *testing.T) {
			c, mt, sink := newClient(t, 0)
			mt.Reply(op.method, op.path, 200, `{"code":200,"data":[]}`)

			env, err := op.invoke(context.Background(), c)
			require.NoError(t, err)
			assert.True(t, env.OK())
			assert.Empty(t, sink.All())

			call := mt.LastCall()
			assert.Equal(t, op.method, call.Method)
			assert.Equal(t, op.path, call.Path)
			if op.check != nil {
				op.check(t, call)
			}
		})
	}
}

func TestQueries_ServerErrorNotifiesOnce(t *testing.T) {
	for _, op := range queries() {
		t.Run(op.name, func(t *testing.T) {
			c, mt, sink := newClient(t, 0)
			mt.Reply(op.method, op.path, 500, `{"code":500,"message":"db down"}`)

			_, err := op.invoke(context.Background(), c)
			require.Error(t, err)
			assert.True(t, shopapi.IsKind(err, shopapi.KindServerStatus))
			assert.Equal(t, 500, shopapi.StatusOf(err))

			require.Len(t, sink.Failures(), 1)
			assert.Equal(t, "db down", sink.Failures()[0].Message)
			assert.Empty(t, sink.Successes())
		})
	}
}

func TestDeliverShortcuts_ShareEndpoint(t *testing.T) {
	c, mt, _ := newClient(t, 0)
	mt.Reply(http.MethodPut, "/api/order/deliver", 200, `{"code":200}`)
	ctx := context.Background()

	_, err := c.Orders.MarkOrderAsShipped(ctx, 9)
	require.NoError(t, err)
	_, err = c.Orders.CancelOrderByDeliver(ctx, 9)
	require.NoError(t, err)
	_, err = c.Orders.ConfirmReceiptByDeliver(ctx, 9)
	require.NoError(t, err)

	calls := mt.Calls()
	require.Len(t, calls, 3)

	var states []string
	for _, call := range calls {
		assert.Equal(t, http.MethodPut, call.Method)
		assert.Equal(t, "/api/order/deliver", call.Path)
		assert.Equal(t, "9", call.Query.Get("order_id"))
		assert.Empty(t, call.Body)
		states = append(states, call.Query.Get("order_state"))
	}
	assert.Equal(t, []string{"awaiting receipt", "cancelled", "completed"}, states)
}

func TestFindOrderByID_Idempotent(t *testing.T) {
	c, mt, sink := newClient(t, 0)
	mt.Reply(http.MethodGet, "/api/order/find-byorderid", 200,
		`{"code":200,"data":{"order_id":9,"user_id":7,"order_state":"pending"}}`)

	first, err := c.Orders.FindOrderByID(context.Background(), 9)
	require.NoError(t, err)
	second, err := c.Orders.FindOrderByID(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, sink.All())

	var order shopapi.Order
	require.NoError(t, first.Decode(&order))
	assert.Equal(t, int64(9), order.ID)
	assert.Equal(t, shopapi.OrderStatePending, order.State)
}

func TestRegisterUser_AlreadyRegistered(t *testing.T) {
	c, mt, sink := newClient(t, 0)
	mt.Reply(http.MethodPost, "/api/user/register", 400, `{"code":400,"message":"email taken"}`)

	env, err := c.Users.RegisterUser(context.Background(), shopapi.Registration{Email: "a@b.c", Password: "pw"})
	assert.NoError(t, err)
	assert.Nil(t, env)
	assert.Empty(t, sink.All())
}

func TestRegisterUser_ServerError(t *testing.T) {
	c, mt, sink := newClient(t, 0)
	mt.Reply(http.MethodPost, "/api/user/register", 500, ``)

	env, err := c.Users.RegisterUser(context.Background(), shopapi.Registration{Email: "a@b.c", Password: "pw"})
	assert.Nil(t, env)
	require.Error(t, err)
	assert.Equal(t, 500, shopapi.StatusOf(err))
	require.Len(t, sink.Failures(), 1)
	assert.Equal(t, "request failed with status code 500", sink.Failures()[0].Message)
}

func TestSearchUserList_NotFoundIsNotNotified(t *testing.T) {
	c, mt, sink := newClient(t, 0)
	mt.Reply(http.MethodGet, "/api/user/search", 404, `{"code":404,"message":"no users"}`)

	_, err := c.Users.SearchUserList(context.Background(), shopapi.UserQuery{Email: "x@y.z"})
	require.Error(t, err)
	assert.Equal(t, 404, shopapi.StatusOf(err))
	assert.Empty(t, sink.All())

	mt.Reply(http.MethodGet, "/api/user/search", 500, `{"code":500,"message":"boom"}`)
	_, err = c.Users.SearchUserList(context.Background(), shopapi.UserQuery{Email: "x@y.z"})
	require.Error(t, err)
	assert.Len(t, sink.Failures(), 1)
}

func TestLogin_Classification(t *testing.T) {
	creds := shopapi.Credentials{Email: "a@b.c", Password: "pw"}

	t.Run("wrong password", func(t *testing.T) {
		mt := testkit.NewMockTransport().
			Reply(http.MethodPost, "/api/user/login", 401, `{"message":"bad password"}`)
		sink := testkit.NewMockSink()
		sink.On("Failure", mock.Anything, "Login", "bad password").Once()

		c, err := shopapi.New(shopapi.Config{BaseURL: baseURL}, shopapi.WithTransport(mt), shopapi.WithSink(sink))
		require.NoError(t, err)

		_, err = c.Users.Login(context.Background(), creds)
		require.Error(t, err)
		assert.Equal(t, shopapi.ReasonWrongPassword, shopapi.ReasonOf(err))
		assert.True(t, shopapi.IsKind(err, shopapi.KindServerStatus))
		sink.AssertExpectations(t)
	})

	t.Run("no such user without body message", func(t *testing.T) {
		c, mt, sink := newClient(t, 0)
		mt.Reply(http.MethodPost, "/api/user/login", 404, ``)

		_, err := c.Users.Login(context.Background(), creds)
		assert.Equal(t, shopapi.ReasonNoSuchUser, shopapi.ReasonOf(err))
		require.Len(t, sink.Failures(), 1)
		assert.Equal(t, "no such user", sink.Failures()[0].Message)
	})

	t.Run("server error", func(t *testing.T) {
		c, mt, _ := newClient(t, 0)
		mt.Reply(http.MethodPost, "/api/user/login", 503, ``)

		_, err := c.Users.Login(context.Background(), creds)
		assert.Equal(t, shopapi.ReasonServerError, shopapi.ReasonOf(err))
	})

	t.Run("timeout", func(t *testing.T) {
		c, mt, sink := newClient(t, 30*time.Millisecond)
		mt.Hang(http.MethodPost, "/api/user/login")

		_, err := c.Users.Login(context.Background(), creds)
		require.Error(t, err)
		assert.True(t, shopapi.IsKind(err, shopapi.KindTransport))
		assert.Equal(t, shopapi.ReasonNone, shopapi.ReasonOf(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		require.Len(t, sink.Failures(), 1)
		msg := sink.Failures()[0].Message
		assert.True(t, strings.HasPrefix(msg, "network error"), msg)
		assert.NotEqual(t, "bad password", msg)
	})

	t.Run("success is silent", func(t *testing.T) {
		c, mt, sink := newClient(t, 0)
		mt.Reply(http.MethodPost, "/api/user/login", 200, `{"code":200,"data":{"user_id":7},"token":"abc"}`)

		env, err := c.Users.Login(context.Background(), creds)
		require.NoError(t, err)
		var token string
		require.NoError(t, env.Field("token", &token))
		assert.Equal(t, "abc", token)
		assert.Empty(t, sink.All())
	})
}

func TestToggleProductLike_EchoesBackendMessage(t *testing.T) {
	c, mt, sink := newClient(t, 0)
	mt.Reply(http.MethodPost, "/api/product_star/star", 200, `{"code":200,"message":"unliked","data":{"product_star":4}}`)

	_, err := c.Likes.ToggleProductLike(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, sink.Successes(), 1)
	assert.Equal(t, "unliked", sink.Successes()[0].Message)

	sink.Reset()
	mt.Reply(http.MethodPost, "/api/product_star/star", 200, `{"code":200}`)
	_, err = c.Likes.ToggleProductLike(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "like updated", sink.Successes()[0].Message)
}

func TestFailureClassification(t *testing.T) {
	t.Run("no response", func(t *testing.T) {
		c, mt, sink := newClient(t, 0)
		mt.Fail(http.MethodGet, "/api/order/find-all", errors.New("connection refused"))

		_, err := c.Orders.FindAllOrders(context.Background())
		assert.True(t, shopapi.IsKind(err, shopapi.KindTransport))
		assert.Equal(t, 0, shopapi.StatusOf(err))
		require.Len(t, sink.Failures(), 1)
		assert.Equal(t, "network error: connection refused", sink.Failures()[0].Message)
	})

	t.Run("non-json success body", func(t *testing.T) {
		c, mt, _ := newClient(t, 0)
		mt.Reply(http.MethodGet, "/api/order/find-all", 200, `<html>`)

		_, err := c.Orders.FindAllOrders(context.Background())
		assert.True(t, shopapi.IsKind(err, shopapi.KindTransport))
	})

	t.Run("empty code falls back", func(t *testing.T) {
		c, mt, sink := newClient(t, 0)
		mt.Reply(http.MethodDelete, "/api/order/delete/order_id", 200, `{}`)

		_, err := c.Orders.DeleteOrder(context.Background(), 9)
		assert.True(t, shopapi.IsKind(err, shopapi.KindValidation))
		assert.Equal(t, "could not delete order", sink.Failures()[0].Message)
	})

	t.Run("request cannot be built", func(t *testing.T) {
		c, _, sink := newClient(t, 0)

		_, err := c.Users.UpdateAvatar(context.Background(), 7, shopapi.Upload{Name: "a.png"})
		assert.True(t, shopapi.IsKind(err, shopapi.KindRequest))
		require.Len(t, sink.Failures(), 1)
		assert.True(t, strings.HasPrefix(sink.Failures()[0].Message, "request error"))
	})
}

func TestRequestIDFromContext(t *testing.T) {
	c, mt, _ := newClient(t, 0)
	mt.Reply(http.MethodGet, "/api/order/find-all", 200, `{"code":200}`)

	ctx := reqid.WithValue(context.Background(), "req-123")
	_, err := c.Orders.FindAllOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-123", mt.LastCall().Header.Get(reqid.Header))
}

func TestNew_Config(t *testing.T) {
	_, err := shopapi.New(shopapi.Config{})
	assert.Error(t, err)

	_, err = shopapi.New(shopapi.Config{BaseURL: "not a url"})
	assert.Error(t, err)

	c, err := shopapi.New(shopapi.Config{BaseURL: baseURL + "/"}, shopapi.WithSink(nil), shopapi.WithHeader("Authorization", "Bearer t"))
	require.NoError(t, err)
	assert.Equal(t, baseURL, c.BaseURL())
	assert.Equal(t, 5*time.Second, c.Timeout())
}

func TestWithHeader_Sent(t *testing.T) {
	mt := testkit.NewMockTransport().Reply(http.MethodGet, "/api/user/find-all", 200, `{"code":200}`)
	c, err := shopapi.New(shopapi.Config{BaseURL: baseURL}, shopapi.WithTransport(mt), shopapi.WithHeader("Authorization", "Bearer t"))
	require.NoError(t, err)

	_, err = c.Users.GetUserList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t", mt.LastCall().Header.Get("Authorization"))
}

func TestPanickingToastHandler_DoesNotReachCaller(t *testing.T) {
	mt := testkit.NewMockTransport().Reply(http.MethodPut, "/api/order/deliver", 200, `{"code":200}`)
	sink := notification.New(notification.HandlerFunc(func(context.Context, notification.Toast) error {
		panic("handler boom")
	}))
	c, err := shopapi.New(shopapi.Config{BaseURL: baseURL}, shopapi.WithTransport(mt), shopapi.WithSink(sink))
	require.NoError(t, err)

	var env *shopapi.Envelope
	require.NotPanics(t, func() {
		env, err = c.Orders.MarkOrderAsShipped(context.Background(), 9)
	})
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, shopapi.CodeOK, env.Code)
}
