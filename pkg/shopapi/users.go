package shopapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
)

// UserService covers registration, login, profile updates and the admin
// user listings.
type UserService struct{ c *Client }

// RegisterUser signs up a new account. A 400 from the backend means the
// email is already registered: RegisterUser then returns (nil, nil) and
// nothing is notified.
func (s *UserService) RegisterUser(ctx context.Context, r Registration) (*Envelope, error) {
	env, err := s.c.do(ctx, call{
		name:     "RegisterUser",
		kind:     mutation,
		success:  "registration complete",
		fallback: "registration failed",
		suppress: alreadyRegistered,
	}, s.c.hc.Post("/api/user/register").Form(r.fields().encode()))
	if alreadyRegisteredErr(err) {
		return nil, nil
	}
	return env, err
}

func alreadyRegistered(e *Error) bool {
	return e.Kind == KindServerStatus && e.Status == http.StatusBadRequest
}

func alreadyRegisteredErr(err error) bool {
	var e *Error
	return errors.As(err, &e) && alreadyRegistered(e)
}

// Login signs in. Success is not notified; the caller decides what to do
// with the returned session. Failures answered with an HTTP status carry a Reason:
// 401 wrong password, 404 no such user, anything else server error.
// Failures without a response are KindTransport, build failures KindRequest.
func (s *UserService) Login(ctx context.Context, cr Credentials) (*Envelope, error) {
	body := Fields{
		"email":     cr.Email,
		"password":  cr.Password,
		"isManager": strconv.FormatBool(cr.IsManager),
	}
	return s.c.do(ctx, call{
		name:     "Login",
		fallback: "sign in failed",
		refine:   classifyLogin,
	}, s.c.hc.Post("/api/user/login").Multipart(body.encode()))
}

func classifyLogin(e *Error) {
	if e.Kind != KindServerStatus {
		return
	}
	switch e.Status {
	case http.StatusUnauthorized:
		e.Reason = ReasonWrongPassword
		e.Message = firstNonEmpty(e.Message, "wrong password")
	case http.StatusNotFound:
		e.Reason = ReasonNoSuchUser
		e.Message = firstNonEmpty(e.Message, "no such user")
	default:
		e.Reason = ReasonServerError
		e.Message = firstNonEmpty(e.Message, "server error, try again later")
	}
}

func (s *UserService) GetUserList(ctx context.Context) (*Envelope, error) {
	return s.c.do(ctx, call{name: "GetUserList", fallback: "could not load users"},
		s.c.hc.Get("/api/user/find-all"))
}

// SearchUserList filters users. A 404 means no match: the error is
// returned but not notified.
func (s *UserService) SearchUserList(ctx context.Context, q UserQuery) (*Envelope, error) {
	return s.c.do(ctx, call{
		name:     "SearchUserList",
		fallback: "user search failed",
		suppress: func(e *Error) bool {
			return e.Kind == KindServerStatus && e.Status == http.StatusNotFound
		},
	}, s.c.hc.Get("/api/user/search").QueryValues(q.values()))
}

func (s *UserService) FindUserByID(ctx context.Context, userID int64) (*Envelope, error) {
	return s.c.do(ctx, call{name: "FindUserByID", fallback: "could not load user"},
		s.c.hc.Get("/api/user/find-byid").Query("user_id", formatID(userID)))
}

func (s *UserService) UpdatePassword(ctx context.Context, userID int64, current, next string) (*Envelope, error) {
	body := Fields{"user_id": formatID(userID), "password": current, "new_password": next}
	return s.c.do(ctx, call{
		name:     "UpdatePassword",
		kind:     mutation,
		success:  "password updated",
		fallback: "could not update password",
	}, s.c.hc.Put("/api/user/update/password").Multipart(body.encode()))
}

func (s *UserService) UpdateUsername(ctx context.Context, userID int64, username string) (*Envelope, error) {
	return s.formUpdate(ctx, "UpdateUsername", "/api/user/update/username",
		Fields{"user_id": formatID(userID), "username": username}, "username updated", "could not update username")
}

// UpdateAvatar uploads a new avatar image.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, avatar Upload) (*Envelope, error) {
	body := Fields{"user_id": formatID(userID)}
	return s.c.do(ctx, call{
		name:     "UpdateAvatar",
		kind:     mutation,
		success:  "avatar updated",
		fallback: "could not update avatar",
	}, s.c.hc.Put("/api/user/update/avatar").Multipart(body.encode(), avatar.part("avatar")))
}

func (s *UserService) UpdateStatus(ctx context.Context, userID int64, status string) (*Envelope, error) {
	return s.formUpdate(ctx, "UpdateStatus", "/api/user/update/status",
		Fields{"user_id": formatID(userID), "status": status}, "status updated", "could not update status")
}

func (s *UserService) UpdateAddress(ctx context.Context, userID int64, address string) (*Envelope, error) {
	return s.formUpdate(ctx, "UpdateAddress", "/api/user/update/address",
		Fields{"user_id": formatID(userID), "address": address}, "address updated", "could not update address")
}

func (s *UserService) AddAddress(ctx context.Context, userID int64, address string) (*Envelope, error) {
	body := Fields{"user_id": formatID(userID), "address": address}
	return s.c.do(ctx, call{
		name:     "AddAddress",
		kind:     mutation,
		success:  "address added",
		fallback: "could not add address",
	}, s.c.hc.Post("/api/user/add/address").Form(body.encode()))
}

func (s *UserService) DeleteAddress(ctx context.Context, userID int64, address string) (*Envelope, error) {
	body := Fields{"user_id": formatID(userID), "address": address}
	return s.c.do(ctx, call{
		name:     "DeleteAddress",
		kind:     mutation,
		success:  "address deleted",
		fallback: "could not delete address",
	}, s.c.hc.Delete("/api/user/delete/address").Multipart(body.encode()))
}

func (s *UserService) DeleteUser(ctx context.Context, userID int64) (*Envelope, error) {
	body := Fields{"user_id": formatID(userID)}
	return s.c.do(ctx, call{
		name:     "DeleteUser",
		kind:     mutation,
		success:  "user deleted",
		fallback: "could not delete user",
	}, s.c.hc.Delete("/api/user/delete/user_id").Multipart(body.encode()))
}

// formUpdate is a PUT with a url-encoded body.
func (s *UserService) formUpdate(ctx context.Context, name, path string, body Fields, success, fallback string) (*Envelope, error) {
	return s.c.do(ctx, call{
		name:     name,
		kind:     mutation,
		success:  success,
		fallback: fallback,
	}, s.c.hc.Put(path).Form(body.encode()))
}
