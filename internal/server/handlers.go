package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
)

// Rounding policy, applied at this presentation boundary only: quote-currency
// amounts get 6 fractional digits, secondary-currency amounts get 2. The
// engine itself carries full precision.
const (
	quoteDigits     = 6
	secondaryDigits = 2
)

type holdingResponse struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Quantity string `json:"quantity"`
}

func toHoldingResponse(h domain.Holding) holdingResponse {
	return holdingResponse{ID: h.ID, Symbol: h.Symbol, Quantity: h.Quantity.String()}
}

type valuationResponse struct {
	Symbol         string  `json:"symbol"`
	LastUnitPrice  *string `json:"last_unit_price"`
	QuoteTotal     *string `json:"quote_total"`
	SecondaryTotal *string `json:"secondary_total"`
}

func toValuationResponse(e domain.ValuationEntry) valuationResponse {
	r := valuationResponse{Symbol: e.Symbol}
	if e.Priced() {
		price := e.LastUnitPrice.StringFixed(quoteDigits)
		quote := e.QuoteTotal.StringFixed(quoteDigits)
		secondary := e.SecondaryTotal.StringFixed(secondaryDigits)
		r.LastUnitPrice = &price
		r.QuoteTotal = &quote
		r.SecondaryTotal = &secondary
	}
	return r
}

func (s *Server) listCoins(c *gin.Context) {
	holdings := s.engine.Holdings()
	out := make([]holdingResponse, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, toHoldingResponse(h))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) addCoin(c *gin.Context) {
	var req struct {
		Symbol   string          `json:"symbol"`
		Quantity decimal.Decimal `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	h, err := s.engine.Add(c.Request.Context(), req.Symbol, req.Quantity)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toHoldingResponse(h))
}

func (s *Server) renameCoin(c *gin.Context) {
	var req struct {
		NewSymbol string `json:"newSymbol"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	h, err := s.engine.Rename(c.Request.Context(), c.Param("id"), req.NewSymbol)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHoldingResponse(h))
}

func (s *Server) resizeCoin(c *gin.Context) {
	var req struct {
		Quantity decimal.Decimal `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	h, err := s.engine.Resize(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHoldingResponse(h))
}

func (s *Server) deleteCoin(c *gin.Context) {
	if err := s.engine.Remove(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getRate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rate": s.engine.Rate().String()})
}

func (s *Server) setRate(c *gin.Context) {
	var req struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	if err := s.engine.SetRate(c.Request.Context(), req.Rate); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": req.Rate.String()})
}

func (s *Server) listValuations(c *gin.Context) {
	holdings := s.engine.Holdings()
	out := make([]valuationResponse, 0, len(holdings))
	for _, h := range holdings {
		if entry, ok := s.engine.Valuation(h.Symbol); ok {
			out = append(out, toValuationResponse(entry))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getValuation(c *gin.Context) {
	entry, ok := s.engine.Valuation(c.Param("symbol"))
	if !ok {
		abortWithError(c, fmt.Errorf("%w: %s", domain.ErrNotFound, c.Param("symbol")))
		return
	}
	c.JSON(http.StatusOK, toValuationResponse(entry))
}

func (s *Server) getTotal(c *gin.Context) {
	totals := s.engine.AggregateTotal()
	c.JSON(http.StatusOK, gin.H{
		"quote_sum":     totals.QuoteSum.StringFixed(quoteDigits),
		"secondary_sum": totals.SecondarySum.StringFixed(secondaryDigits),
	})
}

func (s *Server) getFeedState(c *gin.Context) {
	state := s.feed.State()
	c.JSON(http.StatusOK, gin.H{
		"state": state.String(),
		"stale": state.Stale(),
	})
}
