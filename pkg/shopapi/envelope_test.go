package shopapi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_DecodeAndFields(t *testing.T) {
	env, err := parseEnvelope([]byte(`{"code":200,"message":"ok","data":{"order_id":9},"list":[{"order_id":1},{"order_id":2}],"total":2}`))
	require.NoError(t, err)
	assert.True(t, env.OK())

	var order Order
	require.NoError(t, env.Decode(&order))
	assert.Equal(t, int64(9), order.ID)

	var orders []Order
	require.NoError(t, env.DecodeList(&orders))
	assert.Len(t, orders, 2)

	var total int
	require.NoError(t, env.Field("total", &total))
	assert.Equal(t, 2, total)
	assert.True(t, env.Has("total"))
	assert.False(t, env.Has("token"))
}

func TestEnvelope_MarshalKeepsExtraKeys(t *testing.T) {
	env, err := parseEnvelope([]byte(`{"code":200,"message":"signed in","data":{"user_id":1},"token":"t1","refresh_token":"r1"}`))
	require.NoError(t, err)

	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":200,"message":"signed in","data":{"user_id":1},"token":"t1","refresh_token":"r1"}`, string(out))

	env.Message = ""
	out, err = json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":200,"data":{"user_id":1},"token":"t1","refresh_token":"r1"}`, string(out))

	out, err = json.Marshal(Envelope{Code: 404, Message: "gone"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":404,"message":"gone"}`, string(out))
}

func TestEnvelope_ListFallsBackToData(t *testing.T) {
	env, err := parseEnvelope([]byte(`{"code":200,"data":[{"product_id":3}]}`))
	require.NoError(t, err)

	var products []Product
	require.NoError(t, env.DecodeList(&products))
	require.Len(t, products, 1)
	assert.Equal(t, int64(3), products[0].ID)
}

func TestEnvelope_NoPayload(t *testing.T) {
	env, err := parseEnvelope([]byte(`{"code":200,"data":null}`))
	require.NoError(t, err)

	var v map[string]interface{}
	assert.True(t, errors.Is(env.Decode(&v), ErrNoPayload))
	assert.True(t, errors.Is(env.Field("token", &v), ErrNoPayload))
}

func TestEnvelope_EmptyAndInvalidBodies(t *testing.T) {
	env, err := parseEnvelope(nil)
	require.NoError(t, err)
	assert.False(t, env.OK())

	env, err = parseEnvelope([]byte(`not json`))
	assert.Error(t, err)
	assert.NotNil(t, env)

	var nilEnv *Envelope
	assert.False(t, nilEnv.OK())
}

func TestFields_EncodeSorted(t *testing.T) {
	got := Fields{"user_id": "7", "address": "x", "b": ""}.encode()
	require.Len(t, got, 3)
	assert.Equal(t, "address", got[0].Key)
	assert.Equal(t, "b", got[1].Key)
	assert.Equal(t, "user_id", got[2].Key)
}

func TestRootCause(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	wrapped := &Error{Err: errors.Join(errors.New("outer"), inner)}
	assert.Equal(t, inner, rootCause(wrapped))
	assert.Equal(t, inner, rootCause(inner))
}
