package shopapi

import (
	"context"
)

// LikeService wraps the single like/unlike endpoint.
type LikeService struct{ c *Client }

// ToggleProductLike likes or unlikes productID for userID; the backend
// decides which. The success toast is the backend's own message and the
// envelope may carry the new like count.
func (s *LikeService) ToggleProductLike(ctx context.Context, userID, productID int64) (*Envelope, error) {
	body := Fields{"user_id": formatID(userID), "product_id": formatID(productID)}
	return s.c.do(ctx, call{
		name:     "ToggleProductLike",
		kind:     mutation,
		success:  "like updated",
		fallback: "could not update like",
		echo:     true,
	}, s.c.hc.Post("/api/product_star/star").Form(body.encode()))
}
