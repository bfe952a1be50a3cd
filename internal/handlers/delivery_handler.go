package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"slack-relay-api/internal/models"
	"slack-relay-api/internal/repositories"
	"slack-relay-api/internal/services"
	"slack-relay-api/pkg/httpfn"
)

// DeliveryHandler handles delivery journal HTTP requests
type DeliveryHandler struct {
	deliveryService services.DeliveryService
}

// NewDeliveryHandler creates a new delivery journal handler
func NewDeliveryHandler(deliveryService services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService: deliveryService,
	}
}

// @Summary List deliveries
// @Description Get a list of delivery attempts with optional filters
// @Tags deliveries
// @Accept json
// @Produce json
// @Param status query string false "Filter by delivery status" Enums(pending, delivered, failed)
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {array} models.Delivery
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /deliveries [get]
func (h *DeliveryHandler) ListDeliveries(c *gin.Context) {
	filter := &repositories.DeliveryFilter{}

	// Parse query parameters
	if status := c.Query("status"); status != "" {
		st := models.DeliveryStatus(status)
		filter.Status = &st
	}

	if limit := c.Query("limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 {
			filter.Limit = val
		}
	}

	if offset := c.Query("offset"); offset != "" {
		if val, err := strconv.Atoi(offset); err == nil && val >= 0 {
			filter.Offset = val
		}
	}

	deliveries, err := h.deliveryService.ListDeliveries(c.Request.Context(), filter)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid filter",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list deliveries",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, deliveries)
}

// @Summary Get a delivery
// @Description Get a delivery attempt by ID
// @Tags deliveries
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} models.Delivery
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /deliveries/{id} [get]
func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: "Delivery ID is required",
		})
		return
	}

	// Validate UUID format
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid delivery ID",
			Message: "Delivery ID must be a valid UUID",
		})
		return
	}

	delivery, err := h.deliveryService.GetDelivery(c.Request.Context(), id)
	if err != nil {
		if isNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Delivery not found",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get delivery",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, delivery)
}

// @Summary Get delivery statistics
// @Description Get delivery statistics for a date range
// @Tags deliveries
// @Accept json
// @Produce json
// @Param start_date query string true "Start date (RFC3339 format)"
// @Param end_date query string true "End date (RFC3339 format)"
// @Success 200 {object} repositories.DeliveryStatistics
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /deliveries/statistics [get]
func (h *DeliveryHandler) GetDeliveryStatistics(c *gin.Context) {
	startDateStr := c.Query("start_date")
	endDateStr := c.Query("end_date")

	if startDateStr == "" || endDateStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: "Both start_date and end_date are required",
		})
		return
	}

	startDate, err := time.Parse(time.RFC3339, startDateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid start_date",
			Message: "start_date must be in RFC3339 format",
		})
		return
	}

	endDate, err := time.Parse(time.RFC3339, endDateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid end_date",
			Message: "end_date must be in RFC3339 format",
		})
		return
	}

	stats, err := h.deliveryService.GetDeliveryStatistics(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get delivery statistics",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Summary Replay a delivery
// @Description Replay a failed delivery attempt against its webhook
// @Tags deliveries
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} models.Delivery
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /deliveries/{id}/replay [post]
func (h *DeliveryHandler) ReplayDelivery(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: "Delivery ID is required",
		})
		return
	}

	// Validate UUID format
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid delivery ID",
			Message: "Delivery ID must be a valid UUID",
		})
		return
	}

	delivery, err := h.deliveryService.ReplayDelivery(c.Request.Context(), id)
	if err != nil {
		if isNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Delivery not found",
				Message: err.Error(),
			})
			return
		}
		if isConflictError(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "Delivery cannot be replayed",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to replay delivery",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, delivery)
}

// @Summary Replay failed deliveries
// @Description Replay failed deliveries oldest first
// @Tags deliveries
// @Accept json
// @Produce json
// @Param limit query int false "Maximum deliveries to replay, 0 for all" default(0)
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /deliveries/replay-failed [post]
func (h *DeliveryHandler) ReplayFailedDeliveries(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if val, err := strconv.Atoi(limitStr); err == nil && val > 0 {
			limit = val
		}
	}

	replayed, err := h.deliveryService.ReplayFailed(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to replay deliveries",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Failed deliveries replayed",
		"replayed": replayed,
	})
}

// HandleList drives a journal list request through the typed pipeline
func (h *DeliveryHandler) HandleList(ctx context.Context, req *httpfn.Request) (*httpfn.Response, error) {
	sink := httpfn.NewSink()
	err := httpfn.Run(ctx, req, sink, httpfn.UnitCodec{}, httpfn.JSONCodec[[]*models.Delivery]{}, h.listDeliveries)
	if err != nil {
		return nil, err
	}
	return sink.Response()
}

// HandleGet drives a journal lookup request through the typed pipeline
func (h *DeliveryHandler) HandleGet(ctx context.Context, req *httpfn.Request) (*httpfn.Response, error) {
	sink := httpfn.NewSink()
	err := httpfn.Run(ctx, req, sink, httpfn.UnitCodec{}, httpfn.JSONCodec[*models.Delivery]{}, h.getDelivery)
	if err != nil {
		return nil, err
	}
	return sink.Response()
}

func (h *DeliveryHandler) listDeliveries(ctx context.Context, req *httpfn.TypedRequest[httpfn.Unit]) (*httpfn.TypedResponse[[]*models.Delivery], error) {
	filter := &repositories.DeliveryFilter{}

	values, err := url.ParseQuery(req.RawQuery)
	if err != nil {
		return nil, httpfn.NewDomainError("Invalid query string")
	}

	if status := values.Get("status"); status != "" {
		st := models.DeliveryStatus(status)
		filter.Status = &st
	}
	if limit := values.Get("limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 {
			filter.Limit = val
		}
	}
	if offset := values.Get("offset"); offset != "" {
		if val, err := strconv.Atoi(offset); err == nil && val >= 0 {
			filter.Offset = val
		}
	}

	deliveries, err := h.deliveryService.ListDeliveries(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &httpfn.TypedResponse[[]*models.Delivery]{Body: deliveries}, nil
}

func (h *DeliveryHandler) getDelivery(ctx context.Context, req *httpfn.TypedRequest[httpfn.Unit]) (*httpfn.TypedResponse[*models.Delivery], error) {
	id := deliveryIDFromPath(req.Path)
	if id == "" {
		return nil, httpfn.NewDomainError("Missing delivery ID in request path")
	}

	delivery, err := h.deliveryService.GetDelivery(ctx, id)
	if err != nil {
		return nil, journalError(err)
	}

	return &httpfn.TypedResponse[*models.Delivery]{Body: delivery}, nil
}

// deliveryIDFromPath extracts the ID segment that follows "deliveries" in
// the request path, regardless of where the routes are mounted
func deliveryIDFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if part == "deliveries" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

// journalError maps a journal lookup failure onto its HTTP classification
func journalError(err error) error {
	if repositories.IsNotFound(err) {
		return &httpfn.Error{
			Kind:    httpfn.ErrDomain,
			Status:  http.StatusNotFound,
			Message: err.Error(),
			Err:     err,
		}
	}
	return err
}
