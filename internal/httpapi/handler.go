// Package httpapi exposes the price comparison over HTTP. It keeps no state:
// every request carries the whole sheet.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pricecompare-bot/internal/compare"
	"pricecompare-bot/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CompareRequest struct {
	Unit  string        `json:"unit"`
	Scale string        `json:"scale"`
	Rows  []compare.Row `json:"rows"`
}

type RowResponse struct {
	Index     int     `json:"index"`
	Price     string  `json:"price"`
	Amount    string  `json:"amount"`
	UnitPrice float64 `json:"unit_price"`
	Valid     bool    `json:"valid"`
	Cheapest  bool    `json:"cheapest"`
}

type CompareResponse struct {
	Cheapest    float64       `json:"cheapest"`
	HasCheapest bool          `json:"has_cheapest"`
	PriceUnit   string        `json:"price_unit"`
	AmountUnit  string        `json:"amount_unit"`
	Rows        []RowResponse `json:"rows"`
}

type Handler struct {
	currency string
	logger   *zap.Logger
}

func NewHandler(currency string, logger *zap.Logger) *Handler {
	return &Handler{currency: currency, logger: logger}
}

// NewRouter registers the API routes on a fresh engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.POST("/compare", h.Compare())
	v1.POST("/compare.xlsx", h.CompareXLSX())

	return r
}

//
// POST /v1/compare
//

func (h *Handler) Compare() gin.HandlerFunc {
	return func(c *gin.Context) {
		sheet, ok := bindSheet(c)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, NewCompareResponse(compare.Evaluate(sheet)))
	}
}

//
// POST /v1/compare.xlsx
//

func (h *Handler) CompareXLSX() gin.HandlerFunc {
	return func(c *gin.Context) {
		sheet, ok := bindSheet(c)
		if !ok {
			return
		}

		data, err := export.XLSX(sheet, h.currency)
		if err != nil {
			h.logger.Error("Failed to build workbook", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build workbook"})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(sheet)))
		c.Data(http.StatusOK, xlsxContentType, data.Bytes())
	}
}

func bindSheet(c *gin.Context) (compare.Sheet, bool) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return compare.Sheet{}, false
	}

	sheet, err := req.Sheet()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return compare.Sheet{}, false
	}
	return sheet, true
}

// Sheet converts the request into a sheet. Unit and scale default to weight
// and large; an empty row list yields one empty row.
func (r CompareRequest) Sheet() (compare.Sheet, error) {
	sheet := compare.NewSheet(len(r.Rows))
	copy(sheet.Rows, r.Rows)

	if r.Unit != "" {
		u, err := compare.ParseUnitKind(r.Unit)
		if err != nil {
			return compare.Sheet{}, err
		}
		sheet = sheet.WithUnit(u)
	}
	if r.Scale != "" {
		m, err := compare.ParseScaleMode(r.Scale)
		if err != nil {
			return compare.Sheet{}, err
		}
		sheet = sheet.WithScale(m)
	}
	return sheet, nil
}

func NewCompareResponse(res compare.Result) CompareResponse {
	resp := CompareResponse{
		HasCheapest: res.HasCheapest(),
		PriceUnit:   res.Sheet.Scale.PriceLabel(res.Sheet.Unit),
		AmountUnit:  res.Sheet.Scale.AmountLabel(res.Sheet.Unit),
		Rows:        make([]RowResponse, len(res.Rows)),
	}
	// +Inf does not encode as JSON.
	if resp.HasCheapest {
		resp.Cheapest = res.Cheapest
	}

	for i, rr := range res.Rows {
		resp.Rows[i] = RowResponse{
			Index:     rr.Index,
			Price:     rr.Row.Price,
			Amount:    rr.Row.Amount,
			UnitPrice: rr.UnitPrice,
			Valid:     rr.Valid,
			Cheapest:  rr.Cheapest,
		}
	}
	return resp
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
