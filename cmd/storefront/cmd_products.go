package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

var (
	productClassFlag    string
	productSearchFlag   string
	productNameFlag     string
	productPriceFlag    string
	productDescFlag     string
	productPageFlag     int
	productPageSizeFlag int
	productSortFlag     string
	productOrderFlag    string
	productMinFlag      string
	productMaxFlag      string

	likeUserFlag    int64
	likeProductFlag int64
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Catalog entries",
}

func filterFromFlags() (shopapi.ProductFilter, error) {
	f := shopapi.ProductFilter{
		Page:     productPageFlag,
		PageSize: productPageSizeFlag,
		SortBy:   productSortFlag,
		Order:    productOrderFlag,
	}
	for _, p := range []struct {
		raw string
		dst *decimal.NullDecimal
	}{{productMinFlag, &f.MinPrice}, {productMaxFlag, &f.MaxPrice}} {
		if p.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(p.raw)
		if err != nil {
			return f, fmt.Errorf("invalid price %q: %w", p.raw, err)
		}
		*p.dst = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return f, nil
}

// storefront products list [--class lighting | --search lamp] [--page 1 --page-size 20]
var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List, filter or search products",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFromFlags()
		if err != nil {
			return err
		}
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			switch {
			case productSearchFlag != "":
				return c.Products.SearchProducts(ctx, productSearchFlag, f)
			case productClassFlag != "":
				return c.Products.FindProductsByClass(ctx, productClassFlag, f)
			}
			return c.Products.FindAllProducts(ctx, f)
		})
	},
}

var productGetCmd = &cobra.Command{
	Use:   "get <product-id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error) {
		return c.Products.FindProductByID(ctx, id)
	}),
}

func productFromFlags(id int64) (shopapi.Product, error) {
	price, err := decimal.NewFromString(productPriceFlag)
	if err != nil {
		return shopapi.Product{}, fmt.Errorf("invalid price %q: %w", productPriceFlag, err)
	}
	return shopapi.Product{
		ID:          id,
		Class:       productClassFlag,
		Name:        productNameFlag,
		Description: productDescFlag,
		Price:       price,
	}, nil
}

// storefront products add --class lighting --name "Desk lamp" --price 24.50
var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := productFromFlags(0)
		if err != nil {
			return err
		}
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Products.AddProduct(ctx, p)
		})
	},
}

var productUpdateCmd = &cobra.Command{
	Use:   "update <product-id>",
	Short: "Replace a product's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := productFromFlags(id)
		if err != nil {
			return err
		}
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Products.UpdateProduct(ctx, p)
		})
	},
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <product-id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error) {
		return c.Products.DeleteProduct(ctx, id)
	}),
}

var productPictureCmd = &cobra.Command{
	Use:   "picture <product-id> <file>",
	Short: "Upload a product picture",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		up, closeFile, err := openUpload(args[1])
		if err != nil {
			return err
		}
		defer closeFile()
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Products.AddProductPicture(ctx, id, up)
		})
	},
}

var likesCmd = &cobra.Command{
	Use:   "likes",
	Short: "Product likes",
}

// storefront likes toggle --user 2 --product 1
var likeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Like or unlike a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Likes.ToggleProductLike(ctx, likeUserFlag, likeProductFlag)
		})
	},
}

// openUpload opens path as an Upload; the caller closes it.
func openUpload(path string) (shopapi.Upload, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return shopapi.Upload{}, nil, err
	}
	return shopapi.Upload{Name: filepath.Base(path), Content: f}, func() { _ = f.Close() }, nil
}

func init() {
	lf := productListCmd.Flags()
	lf.StringVar(&productClassFlag, "class", "", "Only this product class")
	lf.StringVar(&productSearchFlag, "search", "", "Search by product name")
	lf.IntVar(&productPageFlag, "page", 0, "Page number, 1-based")
	lf.IntVar(&productPageSizeFlag, "page-size", 0, "Page size")
	lf.StringVar(&productSortFlag, "sort", "", "Sort key: product_id, product_price or product_name")
	lf.StringVar(&productOrderFlag, "order", "", "asc or desc")
	lf.StringVar(&productMinFlag, "min-price", "", "Minimum price")
	lf.StringVar(&productMaxFlag, "max-price", "", "Maximum price")

	for _, c := range []*cobra.Command{productAddCmd, productUpdateCmd} {
		c.Flags().StringVar(&productClassFlag, "class", "", "Product class")
		c.Flags().StringVar(&productNameFlag, "name", "", "Product name")
		c.Flags().StringVar(&productPriceFlag, "price", "0", "Price")
		c.Flags().StringVar(&productDescFlag, "desc", "", "Description")
		_ = c.MarkFlagRequired("name")
	}

	likeToggleCmd.Flags().Int64Var(&likeUserFlag, "user", 0, "User ID")
	likeToggleCmd.Flags().Int64Var(&likeProductFlag, "product", 0, "Product ID")
	_ = likeToggleCmd.MarkFlagRequired("user")
	_ = likeToggleCmd.MarkFlagRequired("product")

	productsCmd.AddCommand(productListCmd, productGetCmd, productAddCmd, productUpdateCmd, productDeleteCmd, productPictureCmd)
	likesCmd.AddCommand(likeToggleCmd)
}
