package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/shared/money"
)

// CurrencyRate is one entry of GET /currencies.
type CurrencyRate struct {
	Code string  `json:"code"`
	Rate float64 `json:"rate"`
	// Sample renders one hundred base units in this currency.
	Sample string `json:"sample"`
}

// CurrencyAPI publishes the display currency table.
type CurrencyAPI struct{}

func NewCurrencyAPI() CurrencyAPI {
	return CurrencyAPI{}
}

// Get /currencies
func (api *CurrencyAPI) ListCurrencies(c *gin.Context) {
	sample := decimal.NewFromInt(100)
	rates := make([]CurrencyRate, 0, len(money.Supported()))
	for _, currency := range money.Supported() {
		rates = append(rates, CurrencyRate{
			Code:   string(currency),
			Rate:   currency.Rate().InexactFloat64(),
			Sample: money.Format(money.Convert(sample, currency), currency),
		})
	}
	c.JSON(http.StatusOK, rates)
}
