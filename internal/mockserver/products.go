package mockserver

import (
	"fmt"
	"net/http"
	"path"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

func (s *Server) mountProducts(api *router.Group) {
	p := api.Group("/product")
	p.Post("/addProduct", "product.add", s.addProduct)
	p.Put("/add/product_picture", "product.picture", s.addProductPicture)
	p.Put("/update/productinfo", "product.update", s.updateProduct)
	p.Delete("/delete/product_id", "product.delete", s.deleteProduct)
	p.Get("/find-all", "product.find-all", s.listProducts(nil))
	p.Get("/find-byclass", "product.find-by-class", s.listProducts(byClass))
	p.Get("/find-byid", "product.find-by-id", s.findProduct)
	p.Get("/search", "product.search", s.listProducts(byName))
}

type productInput struct {
	ID          int64           `json:"product_id" form:"product_id"`
	Class       string          `json:"product_class" form:"product_class" validate:"required"`
	Name        string          `json:"product_name" form:"product_name" validate:"required"`
	Description string          `json:"product_description" form:"product_description"`
	Price       decimal.Decimal `json:"product_price" form:"product_price"`
}

func (in productInput) toShop() shopapi.Product {
	return shopapi.Product{ID: in.ID, Class: in.Class, Name: in.Name, Description: in.Description, Price: in.Price}
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if errs, err := bind.JSON(r, &in); !bound(w, errs, err) {
		return
	}
	if in.Price.IsNegative() {
		response.Reject(w, http.StatusUnprocessableEntity, "product_price: gte=0")
		return
	}
	response.Success(w, "product added", s.store.AddProduct(in.toShop()))
}

func (s *Server) addProductPicture(w http.ResponseWriter, r *http.Request) {
	var in productRef
	if errs, err := bind.Multipart(r, &in); !bound(w, errs, err) {
		return
	}
	fh, err := bind.File(r, "product_picture")
	if err != nil {
		response.Reject(w, http.StatusUnprocessableEntity, "product_picture: required")
		return
	}
	stored := path.Join(s.opts.UploadPrefix, "products", fmt.Sprint(in.ID), path.Base(fh.Filename))
	p, err := s.store.UpdateProduct(in.ID, func(p *shopapi.Product) { p.Picture = stored })
	if err != nil {
		reject(w, r, err, "product")
		return
	}
	response.Success(w, "picture uploaded", p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if errs, err := bind.Form(r, &in); !bound(w, errs, err) {
		return
	}
	if in.ID <= 0 {
		response.Reject(w, http.StatusUnprocessableEntity, "product_id: required")
		return
	}
	p, err := s.store.UpdateProduct(in.ID, func(p *shopapi.Product) {
		p.Class, p.Name, p.Price = in.Class, in.Name, in.Price
		if in.Description != "" {
			p.Description = in.Description
		}
	})
	if err != nil {
		reject(w, r, err, "product")
		return
	}
	response.Success(w, "product updated", p)
}

type productRef struct {
	ID int64 `form:"product_id" validate:"required,gt=0"`
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	var in productRef
	if errs, err := bind.Query(r, &in); !bound(w, errs, err) {
		return
	}
	if err := s.store.DeleteProduct(in.ID); err != nil {
		reject(w, r, err, "product")
		return
	}
	response.Success(w, "product deleted", nil)
}

func (s *Server) findProduct(w http.ResponseWriter, r *http.Request) {
	var in productRef
	if errs, err := bind.Query(r, &in); !bound(w, errs, err) {
		return
	}
	p, err := s.store.Product(in.ID)
	if err != nil {
		reject(w, r, err, "product")
		return
	}
	response.Success(w, "", p)
}

// productFilter is the query side of shopapi.ProductFilter.
type productFilter struct {
	Class    string `form:"product_class"`
	Name     string `form:"product_name"`
	Page     int    `form:"page" validate:"gte=0"`
	PageSize int    `form:"page_size" validate:"gte=0,lte=100"`
	SortBy   string `form:"sort_by" validate:"omitempty,oneof=product_id product_price product_name"`
	Order    string `form:"order" validate:"omitempty,oneof=asc desc"`
	MinPrice string `form:"min_price" validate:"omitempty,numeric"`
	MaxPrice string `form:"max_price" validate:"omitempty,numeric"`
}

func (f productFilter) query() ProductQuery {
	q := ProductQuery{
		Class:    f.Class,
		Name:     f.Name,
		SortBy:   f.SortBy,
		Desc:     f.Order == "desc",
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if d, err := decimal.NewFromString(f.MinPrice); err == nil {
		q.MinPrice = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	if d, err := decimal.NewFromString(f.MaxPrice); err == nil {
		q.MaxPrice = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return q
}

// filterCheck rejects a listing whose selector is missing.
type filterCheck func(productFilter) string

func byClass(f productFilter) string {
	if f.Class == "" {
		return "product_class: required"
	}
	return ""
}

func byName(f productFilter) string {
	if f.Name == "" {
		return "product_name: required"
	}
	return ""
}

// listProducts serves find-all, find-byclass and search; check, when set,
// requires the endpoint's selector.
func (s *Server) listProducts(check filterCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in productFilter
		if errs, err := bind.Query(r, &in); !bound(w, errs, err) {
			return
		}
		if check == nil {
			in.Class, in.Name = "", ""
		} else if msg := check(in); msg != "" {
			response.Reject(w, http.StatusUnprocessableEntity, msg)
			return
		}
		page, total := s.store.Products(in.query())
		response.List(w, page, total)
	}
}
