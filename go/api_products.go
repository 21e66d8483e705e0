package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	cataloghttpmapper "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// ListProductsParams are the query parameters of GET /products.
type ListProductsParams struct {
	Search   *string `form:"search" json:"search,omitempty"`
	Category *string `form:"category" json:"category,omitempty"`
	Brand    *string `form:"brand" json:"brand,omitempty"`
	Size     *string `form:"size" json:"size,omitempty"`
	MinPrice *string `form:"minPrice" json:"minPrice,omitempty"`
	MaxPrice *string `form:"maxPrice" json:"maxPrice,omitempty"`
	Sort     *string `form:"sort" json:"sort,omitempty"`
	Page     *int    `form:"page" json:"page,omitempty"`
	Limit    *int    `form:"limit" json:"limit,omitempty"`
}

// ProductAPI serves the public catalog.
type ProductAPI struct {
	service   catalogports.Service
	responder *apierrors.ChainedResponder
}

func NewProductAPI(service catalogports.Service, responder *apierrors.ChainedResponder) ProductAPI {
	return ProductAPI{service: service, responder: responder}
}

// Get /products
// Lists products with search, filters, sorting and pagination.
func (api *ProductAPI) ListProducts(c *gin.Context) {
	params, err := bindListProductsParams(c)
	if err != nil {
		badRequest(c, api.responder, err.Error())
		return
	}
	input := catalogports.ListInput{
		Search:   deref(params.Search),
		Category: deref(params.Category),
		Brand:    deref(params.Brand),
		Size:     deref(params.Size),
		Sort:     deref(params.Sort),
	}
	if params.Page != nil {
		input.Page = *params.Page
	}
	if params.Limit != nil {
		input.Limit = *params.Limit
	}
	if input.MinPrice, err = parsePrice(params.MinPrice); err != nil {
		api.responder.Respond(c, apierrors.NewValidationProblem(map[string]string{"minPrice": "must be a number"}))
		return
	}
	if input.MaxPrice, err = parsePrice(params.MaxPrice); err != nil {
		api.responder.Respond(c, apierrors.NewValidationProblem(map[string]string{"maxPrice": "must be a number"}))
		return
	}

	page, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainPage(page))
}

// Get /products/:productId
func (api *ProductAPI) GetProduct(c *gin.Context) {
	product, err := api.service.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProduct(product))
}

func bindListProductsParams(c *gin.Context) (ListProductsParams, error) {
	var params ListProductsParams
	query := c.Request.URL.Query()
	bindings := []struct {
		name string
		dest any
	}{
		{"search", &params.Search},
		{"category", &params.Category},
		{"brand", &params.Brand},
		{"size", &params.Size},
		{"minPrice", &params.MinPrice},
		{"maxPrice", &params.MaxPrice},
		{"sort", &params.Sort},
		{"page", &params.Page},
		{"limit", &params.Limit},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return ListProductsParams{}, err
		}
	}
	return params, nil
}

func parsePrice(raw *string) (*decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
