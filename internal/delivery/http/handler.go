package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

const (
	serviceName    = "persona-linker"
	serviceVersion = "1.0.0"

	invalidPayloadMessage = "Invalid or missing JSON payload"
	maxBodyBytes          = 1 << 20
)

// LinkingUsecase is what the handlers need from the linking service
type LinkingUsecase interface {
	Predict(ctx context.Context, request *domain.PredictRequest) (*domain.PredictResponse, error)
	CompareVendors(ctx context.Context, vendor1, vendor2 string) (*domain.VendorComparison, error)
	ModelRunID() string
}

// marshalResponse is swapped in tests to exercise the serialization fallback
var marshalResponse = json.Marshal

// Handler holds dependencies for HTTP handlers
type Handler struct {
	linker LinkingUsecase
}

// NewHandler creates a new HTTP handler
func NewHandler(linker LinkingUsecase) *Handler {
	return &Handler{linker: linker}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	runID := ""
	if h.linker != nil {
		runID = h.linker.ModelRunID()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      serviceName,
		"version":      serviceVersion,
		"model_run_id": runID,
	})
}

// Predict scores one pair of listings
func (h *Handler) Predict(c *gin.Context) {
	if h.linker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Linking service is not configured"})
		return
	}

	request, ok := decodePredictRequest(c)
	if !ok {
		return
	}
	if missing := request.Missing(); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required fields in JSON payload. Required: " + strings.Join(domain.RequiredPredictFields, ", "),
			"missing": missing,
		})
		return
	}

	response, err := h.linker.Predict(c.Request.Context(), request)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeVerdict(c, response.Verdict, response.Score, response)
}

// CompareVendors samples one listing of each named vendor and scores the pair
func (h *Handler) CompareVendors(c *gin.Context) {
	if h.linker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Linking service is not configured"})
		return
	}

	var request domain.VendorCompareRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: vendor1 and vendor2 are required"})
		return
	}

	comparison, err := h.linker.CompareVendors(c.Request.Context(), request.Vendor1, request.Vendor2)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeVerdict(c, comparison.Verdict, comparison.Score, comparison)
}

// decodePredictRequest accepts only a JSON object body
func decodePredictRequest(c *gin.Context) (*domain.PredictRequest, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidPayloadMessage})
		return nil, false
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidPayloadMessage})
		return nil, false
	}

	var request domain.PredictRequest
	if err := json.Unmarshal(body, &request); err != nil {
		log.Printf("[API] rejecting payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidPayloadMessage})
		return nil, false
	}
	return &request, true
}

// writeVerdict serializes payload, falling back to the bare verdict and score
func writeVerdict(c *gin.Context, verdict string, score int, payload any) {
	body, err := marshalResponse(payload)
	if err != nil {
		log.Printf("[API] response serialization failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"verdict": verdict,
			"score":   score,
			"error":   "Report could not be serialized: " + err.Error(),
		})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// writeError maps domain errors to HTTP responses
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidPair),
		errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrVendorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrListingStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrReportGeneration):
		log.Printf("[API] report generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "An error occurred while generating the report: " + err.Error(),
		})
	default:
		log.Printf("[API] request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
