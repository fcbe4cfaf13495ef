package apix

import (
	"context"
	"net/url"
)

// ProductsAPI reads the public catalog.
type ProductsAPI struct {
	c *Client
}

func NewProductsAPI(c *Client) *ProductsAPI {
	return &ProductsAPI{c: c}
}

// List fetches products, optionally filtered by a free-text query.
func (a *ProductsAPI) List(ctx context.Context, query string) (*ProductsResponse, error) {
	path := "/products"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out ProductsResponse
	if err := a.c.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ProductsAPI) BySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	if err := requireID("product_slug_required", slug); err != nil {
		return nil, err
	}
	var out ProductResponse
	if err := a.c.Get(ctx, "/products/"+slug, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ProductsAPI) Assets(ctx context.Context, slug string) (*ProductAssetsResponse, error) {
	if err := requireID("product_slug_required", slug); err != nil {
		return nil, err
	}
	var out ProductAssetsResponse
	if err := a.c.Get(ctx, "/products/"+slug+"/assets", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CategoriesAPI reads the category tree.
type CategoriesAPI struct {
	c *Client
}

func NewCategoriesAPI(c *Client) *CategoriesAPI {
	return &CategoriesAPI{c: c}
}

func (a *CategoriesAPI) List(ctx context.Context) (*CategoriesResponse, error) {
	var out CategoriesResponse
	if err := a.c.Get(ctx, "/categories?include_counts=true", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
