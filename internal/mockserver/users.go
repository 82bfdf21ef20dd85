package mockserver

import (
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

func (s *Server) mountUsers(api *router.Group) {
	u := api.Group("/user")
	u.Post("/register", "user.register", s.register)
	u.Post("/login", "user.login", s.login)
	u.Get("/find-all", "user.find-all", s.listUsers)
	u.Get("/search", "user.search", s.searchUsers)
	u.Get("/find-byid", "user.find-by-id", s.findUser)
	u.Put("/update/password", "user.update-password", s.updatePassword)
	u.Put("/update/username", "user.update-username", s.updateUsername)
	u.Put("/update/avatar", "user.update-avatar", s.updateAvatar)
	u.Put("/update/status", "user.update-status", s.updateStatus)
	u.Put("/update/address", "user.update-address", s.updateAddress)
	u.Post("/add/address", "user.add-address", s.addAddress)
	u.Delete("/delete/address", "user.delete-address", s.deleteAddress)
	u.Delete("/delete/user_id", "user.delete", s.deleteUser)
}

// register answers HTTP 400 when the email is taken.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `form:"email" validate:"required,email"`
		Password string `form:"password" validate:"required,min=6"`
		Username string `form:"username" validate:"omitempty,max=32"`
	}
	if errs, err := bind.Form(r, &in); !bound(w, errs, err) {
		return
	}
	u, err := s.store.Register(in.Email, in.Password, in.Username, false)
	if errors.Is(err, errEmailTaken) {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		reject(w, r, err, "user")
		return
	}
	response.Success(w, "registration complete", u)
}

// login answers 404 for an unknown email and 401 for a bad password, and
// returns an access and a refresh token on success.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email     string `form:"email" validate:"required"`
		Password  string `form:"password" validate:"required"`
		IsManager bool   `form:"isManager"`
	}
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}

	u, err := s.store.Authenticate(in.Email, in.Password)
	switch {
	case errors.Is(err, errNotFound):
		response.Error(w, http.StatusNotFound, "no such user")
		return
	case errors.Is(err, errWrongPass):
		response.Error(w, http.StatusUnauthorized, "wrong password")
		return
	case err != nil:
		reject(w, r, err, "user")
		return
	}
	if in.IsManager && !u.IsManager {
		response.Reject(w, http.StatusForbidden, "not a manager account")
		return
	}

	access, err := auth.GenerateToken(u.ID, u.IsManager)
	if err != nil {
		reject(w, r, err, "user")
		return
	}
	refresh, err := auth.GenerateRefreshToken(u.ID, u.IsManager)
	if err != nil {
		reject(w, r, err, "user")
		return
	}
	response.With(w, "signed in", u, map[string]interface{}{
		"token":         access,
		"refresh_token": refresh,
	})
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	users := s.store.Users()
	response.List(w, users, len(users))
}

// searchUsers answers HTTP 404 when nothing matches.
func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `form:"username"`
		Email    string `form:"email"`
		Status   string `form:"status"`
	}
	if errs, err := bind.Query(r, &in); !bound(w, errs, err) {
		return
	}
	users := s.store.SearchUsers(shopapi.UserQuery{Username: in.Username, Email: in.Email, Status: in.Status})
	if len(users) == 0 {
		response.Error(w, http.StatusNotFound, "no matching user")
		return
	}
	response.List(w, users, len(users))
}

type userRef struct {
	UserID int64 `form:"user_id" validate:"required,gt=0"`
}

func (s *Server) findUser(w http.ResponseWriter, r *http.Request) {
	var in userRef
	if errs, err := bind.Query(r, &in); !bound(w, errs, err) {
		return
	}
	u, err := s.store.User(in.UserID)
	if err != nil {
		reject(w, r, err, "user")
		return
	}
	response.Success(w, "", u)
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID      int64  `form:"user_id" validate:"required,gt=0"`
		Password    string `form:"password" validate:"required"`
		NewPassword string `form:"new_password" validate:"required,min=6,nefield=Password"`
	}
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	if err := s.store.ChangePassword(in.UserID, in.Password, in.NewPassword); err != nil {
		reject(w, r, err, "user")
		return
	}
	response.Success(w, "password updated", nil)
}

func (s *Server) updateUsername(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID   int64  `form:"user_id" validate:"required,gt=0"`
		Username string `form:"username" validate:"required,max=32"`
	}
	if errs, err := bind.Form(r, &in); !bound(w, errs, err) {
		return
	}
	s.updateUser(w, r, in.UserID, "username updated", func(u *shopapi.User) error {
		u.Username = in.Username
		return nil
	})
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID int64  `form:"user_id" validate:"required,gt=0"`
		Status string `form:"status" validate:"required,oneof=active disabled"`
	}
	if errs, err := bind.Form(r, &in); !bound(w, errs, err) {
		return
	}
	s.updateUser(w, r, in.UserID, "status updated", func(u *shopapi.User) error {
		u.Status = in.Status
		return nil
	})
}

func (s *Server) updateAvatar(w http.ResponseWriter, r *http.Request) {
	var in userRef
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	fh, err := bind.File(r, "avatar")
	if err != nil {
		response.Reject(w, http.StatusUnprocessableEntity, "avatar: required")
		return
	}
	stored := path.Join(s.opts.UploadPrefix, "avatars", fmt.Sprint(in.UserID), path.Base(fh.Filename))
	s.updateUser(w, r, in.UserID, "avatar updated", func(u *shopapi.User) error {
		u.Avatar = stored
		return nil
	})
}

type addressInput struct {
	UserID  int64  `form:"user_id" validate:"required,gt=0"`
	Address string `form:"address" validate:"required"`
}

// updateAddress replaces the primary address, adding one if there is none.
func (s *Server) updateAddress(w http.ResponseWriter, r *http.Request) {
	var in addressInput
	if errs, err := bind.Form(r, &in); !bound(w, errs, err) {
		return
	}
	s.updateUser(w, r, in.UserID, "address updated", func(u *shopapi.User) error {
		if len(u.Addresses) == 0 {
			u.Addresses = []string{in.Address}
			return nil
		}
		u.Addresses[0] = in.Address
		return nil
	})
}

func (s *Server) addAddress(w http.ResponseWriter, r *http.Request) {
	var in addressInput
	if errs, err := bind.Form(r, &in); !bound(w, errs, err) {
		return
	}
	s.updateUser(w, r, in.UserID, "address added", func(u *shopapi.User) error {
		for _, a := range u.Addresses {
			if a == in.Address {
				return fmt.Errorf("address %w", errDuplicate)
			}
		}
		u.Addresses = append(u.Addresses, in.Address)
		return nil
	})
}

func (s *Server) deleteAddress(w http.ResponseWriter, r *http.Request) {
	var in addressInput
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	s.updateUser(w, r, in.UserID, "address deleted", func(u *shopapi.User) error {
		for i, a := range u.Addresses {
			if a == in.Address {
				u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
				return nil
			}
		}
		return errNotFound
	})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	var in userRef
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	if err := s.store.DeleteUser(in.UserID); err != nil {
		reject(w, r, err, "user")
		return
	}
	response.Success(w, "user deleted", nil)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, id int64, msg string, fn func(u *shopapi.User) error) {
	u, err := s.store.UpdateUser(id, fn)
	if err != nil {
		reject(w, r, err, "user or address")
		return
	}
	response.Success(w, msg, u)
}
