package shopapi

import (
	"context"
)

// ProductService covers the catalog. Likes live in LikeService.
type ProductService struct{ c *Client }

// AddProduct creates a catalog entry. The picture is uploaded separately.
func (s *ProductService) AddProduct(ctx context.Context, p Product) (*Envelope, error) {
	return s.c.do(ctx, call{
		name:     "AddProduct",
		kind:     mutation,
		success:  "product added",
		fallback: "could not add product",
	}, s.c.hc.Post("/api/product/addProduct").JSON(p))
}

// AddProductPicture uploads the picture of an existing product.
func (s *ProductService) AddProductPicture(ctx context.Context, productID int64, picture Upload) (*Envelope, error) {
	body := Fields{"product_id": formatID(productID)}
	return s.c.do(ctx, call{
		name:     "AddProductPicture",
		kind:     mutation,
		success:  "picture uploaded",
		fallback: "could not upload picture",
	}, s.c.hc.Put("/api/product/add/product_picture").Multipart(body.encode(), picture.part("product_picture")))
}

// UpdateProduct sends the product as a url-encoded form.
func (s *ProductService) UpdateProduct(ctx context.Context, p Product) (*Envelope, error) {
	return s.c.do(ctx, call{
		name:     "UpdateProduct",
		kind:     mutation,
		success:  "product updated",
		fallback: "could not update product",
	}, s.c.hc.Put("/api/product/update/productinfo").Form(p.fields().encode()))
}

func (s *ProductService) DeleteProduct(ctx context.Context, productID int64) (*Envelope, error) {
	return s.c.do(ctx, call{
		name:     "DeleteProduct",
		kind:     mutation,
		success:  "product deleted",
		fallback: "could not delete product",
	}, s.c.hc.Delete("/api/product/delete/product_id").Query("product_id", formatID(productID)))
}

func (s *ProductService) FindAllProducts(ctx context.Context, f ProductFilter) (*Envelope, error) {
	return s.c.do(ctx, call{name: "FindAllProducts", fallback: "could not load products"},
		s.c.hc.Get("/api/product/find-all").QueryValues(f.values()))
}

func (s *ProductService) FindProductsByClass(ctx context.Context, class string, f ProductFilter) (*Envelope, error) {
	return s.c.do(ctx, call{name: "FindProductsByClass", fallback: "could not load products"},
		s.c.hc.Get("/api/product/find-byclass").Query("product_class", class).QueryValues(f.values()))
}

func (s *ProductService) FindProductByID(ctx context.Context, productID int64) (*Envelope, error) {
	return s.c.do(ctx, call{name: "FindProductByID", fallback: "could not load product"},
		s.c.hc.Get("/api/product/find-byid").Query("product_id", formatID(productID)))
}

func (s *ProductService) SearchProducts(ctx context.Context, name string, f ProductFilter) (*Envelope, error) {
	return s.c.do(ctx, call{name: "SearchProducts", fallback: "search failed"},
		s.c.hc.Get("/api/product/search").Query("product_name", name).QueryValues(f.values()))
}
