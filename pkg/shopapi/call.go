package shopapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	sfhttp "github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
)

type opKind int

const (
	query opKind = iota
	mutation
)

// call describes how one operation reports its outcome.
type call struct {
	name     string
	kind     opKind
	success  string // success toast text
	fallback string // failure text when neither body nor transport give one
	echo     bool   // success toast carries the backend message when present

	suppress func(*Error) bool // failures returned without a toast
	refine   func(*Error)      // call-site classification, runs before suppress
}

// do sends req once and turns the response into an envelope or an *Error.
func (c *Client) do(ctx context.Context, cl call, req *sfhttp.Request) (*Envelope, error) {
	ctx, _ = reqid.Ensure(ctx)
	log := logger.WithCtx(ctx)
	start := time.Now()

	log.Debug("shopapi: call", "op", cl.name, "method", req.Method(), "path", req.Path())

	resp, err := req.Send(ctx)
	if err != nil {
		metrics.ObserveCall(cl.name, req.Method(), 0, start)
		return nil, c.fail(ctx, cl, c.sendError(cl, err))
	}
	metrics.ObserveCall(cl.name, req.Method(), resp.StatusCode, start)

	env, perr := parseEnvelope(resp.Raw)

	if !resp.OK() {
		return nil, c.fail(ctx, cl, &Error{
			Op:      cl.name,
			Kind:    KindServerStatus,
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: env.Message,
		})
	}

	if perr != nil {
		return nil, c.fail(ctx, cl, &Error{
			Op:      cl.name,
			Kind:    KindTransport,
			Status:  resp.StatusCode,
			Message: "invalid response body",
			Err:     perr,
		})
	}

	if env.Code != CodeOK {
		return nil, c.fail(ctx, cl, &Error{
			Op:      cl.name,
			Kind:    KindValidation,
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: firstNonEmpty(env.Message, cl.fallback),
		})
	}

	if cl.kind == mutation {
		msg := cl.success
		if cl.echo && env.Message != "" {
			msg = env.Message
		}
		c.sink.Success(ctx, cl.name, msg)
	}
	return env, nil
}

// sendError classifies an error from Request.Send.
func (c *Client) sendError(cl call, err error) *Error {
	if errors.Is(err, sfhttp.ErrBuild) {
		return &Error{
			Op:      cl.name,
			Kind:    KindRequest,
			Message: "request error: " + rootCause(err).Error(),
			Err:     err,
		}
	}

	msg := "network error: " + rootCause(err).Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("network error: no response within %s", c.hc.Timeout())
	}
	return &Error{
		Op:      cl.name,
		Kind:    KindTransport,
		Message: msg,
		Err:     err,
	}
}

func (c *Client) fail(ctx context.Context, cl call, e *Error) error {
	if cl.refine != nil {
		cl.refine(e)
	}
	if e.Message == "" && e.Status != 0 && e.Kind == KindServerStatus {
		e.Message = fmt.Sprintf("request failed with status code %d", e.Status)
	}
	e.Message = firstNonEmpty(e.Message, cl.fallback)

	log := logger.WithCtx(ctx)
	if cl.suppress != nil && cl.suppress(e) {
		log.Debug("shopapi: failure not reported", "op", cl.name, "status", e.Status, "error", e.Message)
		return e
	}

	metrics.RecordFailure(cl.name, e.Kind.String())
	log.Warn("shopapi: call failed",
		"op", cl.name, "kind", e.Kind.String(), "status", e.Status, "code", e.Code, "error", e.Message)
	c.sink.Failure(ctx, cl.name, e.Message)
	return e
}

// rootCause follows the wrap chain to the innermost error.
func rootCause(err error) error {
	for {
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			if len(errs) == 0 {
				return err
			}
			err = errs[len(errs)-1]
		case interface{ Unwrap() error }:
			next := u.Unwrap()
			if next == nil {
				return err
			}
			err = next
		default:
			return err
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
