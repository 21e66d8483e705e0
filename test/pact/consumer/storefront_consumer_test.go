//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/storefront-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type productPayload struct {
	ID       string  `json:"id"`
	Slug     string  `json:"slug"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestStorefrontWebContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	example := pacttest.ExampleProductPayload()
	productMatcher := matchers.Map{
		"id":       matchers.Like(example["id"]),
		"slug":     matchers.Term(example["slug"].(string), "^[a-z0-9-]+$"),
		"title":    matchers.Like(example["title"]),
		"category": matchers.Like(example["category"]),
		"price":    matchers.Like(example["price"]),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request to list products").
		WithRequest("GET", "/products", func(b *pactconsumer.V2RequestBuilder) {
			b.Query("limit", matchers.S("12"))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"products": matchers.EachLike(productMatcher, 1),
				"pagination": matchers.Map{
					"total":      matchers.Like(2),
					"page":       matchers.Like(1),
					"limit":      matchers.Like(12),
					"totalPages": matchers.Like(1),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request to fetch an existing product").
		WithRequest("GET", "/products/"+pacttest.ExistingProductID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(productMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateProductMissing).
		UponReceiving("a request for a missing product").
		WithRequest("GET", "/products/"+pacttest.MissingProductID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateShopperSignedIn).
		UponReceiving("a login with valid credentials").
		WithRequest("POST", "/auth/login", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleLoginPayload())
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"user": matchers.Map{
					"id":    matchers.Like("3f2b7c1e-0000-4000-8000-000000000001"),
					"email": matchers.S(pacttest.ShopperEmail),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request for the currency table").
		WithRequest("GET", "/currencies").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"code":   matchers.Term("USD", "^[A-Z]{3}$"),
				"rate":   matchers.Like(1.0),
				"sample": matchers.Like("$100.00"),
			}, 1))
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newStorefrontClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		products, err := client.ListProducts(ctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		if len(products) == 0 {
			return fmt.Errorf("expected at least one product")
		}

		product, err := client.GetProduct(ctx, pacttest.ExistingProductID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product.ID != pacttest.ExistingProductID {
			return fmt.Errorf("expected product %s, got %+v", pacttest.ExistingProductID, product)
		}

		if _, err := client.GetProduct(ctx, pacttest.MissingProductID); err == nil {
			return fmt.Errorf("expected 404 for product %s", pacttest.MissingProductID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		user, err := client.Login(ctx, pacttest.ShopperEmail, pacttest.ShopperPassword)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if user.Email != pacttest.ShopperEmail {
			return fmt.Errorf("unexpected user %+v", user)
		}

		if err := client.Currencies(ctx); err != nil {
			return fmt.Errorf("currencies: %w", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type storefrontClient struct {
	baseURL    string
	httpClient *http.Client
}

func newStorefrontClient(config pactconsumer.MockServerConfig) *storefrontClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &storefrontClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *storefrontClient) ListProducts(ctx context.Context) ([]productPayload, error) {
	var page struct {
		Products []productPayload `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products?limit=12", nil, &page); err != nil {
		return nil, err
	}
	return page.Products, nil
}

func (c *storefrontClient) GetProduct(ctx context.Context, id string) (*productPayload, error) {
	var product productPayload
	if err := c.do(ctx, http.MethodGet, "/products/"+id, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *storefrontClient) Login(ctx context.Context, email, password string) (*userPayload, error) {
	var payload struct {
		User userPayload `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &payload); err != nil {
		return nil, err
	}
	return &payload.User, nil
}

func (c *storefrontClient) Currencies(ctx context.Context) error {
	var rates []map[string]any
	return c.do(ctx, http.MethodGet, "/currencies", nil, &rates)
}

func (c *storefrontClient) do(ctx context.Context, method, path string, body any, dest any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return json.NewDecoder(res.Body).Decode(dest)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
