package mockserver

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

func (s *Server) mountLikes(api *router.Group) {
	api.Post("/product_star/star", "product.like", s.toggleLike)
}

// toggleLike answers with its own message, which the client shows as is.
func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID    int64 `form:"user_id" validate:"required,gt=0"`
		ProductID int64 `form:"product_id" validate:"required,gt=0"`
	}
	if errs, err := bind.Form(r, &in); !bound(w, errs, err) {
		return
	}
	liked, count, err := s.store.ToggleLike(in.UserID, in.ProductID)
	if err != nil {
		reject(w, r, err, "user or product")
		return
	}

	msg := "unliked"
	if liked {
		msg = "liked"
	}
	response.Success(w, msg, map[string]interface{}{"product_star": count, "liked": liked})
}
