package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/taxiluck/tli-backend-go/internal/models"
	"github.com/taxiluck/tli-backend-go/internal/service"
	"github.com/taxiluck/tli-backend-go/pkg/response"
)

// AnalysisHandler handles HTTP requests for TLI analysis
type AnalysisHandler struct {
	service *service.AnalysisService
	logger  *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *service.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, logger: logger}
}

// Analyze handles GET /analyze?pu_borough=&do_borough=&time=HH:MM
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var query models.AnalyzeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}

	result, err := h.service.Analyze(query)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, result)
}

// Routes handles GET /routes
func (h *AnalysisHandler) Routes(c *gin.Context) {
	routes, err := h.service.Routes()
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"status": models.StatusSuccess,
		"routes": routes,
	})
}

// Health handles GET /health
func (h *AnalysisHandler) Health(c *gin.Context) {
	status := h.service.Status()
	response.Success(c, gin.H{
		"status":             "ok",
		"data_available":     status.DataAvailable,
		"trip_records":       status.TripRecords,
		"congestion_records": status.CongestionRecords,
		"routes":             status.Routes,
	})
}

func (h *AnalysisHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrDataUnavailable):
		response.InternalError(c, err.Error())
	default:
		h.logger.Error("unexpected analysis error", "path", c.Request.URL.Path, "error", err)
		response.InternalError(c, "internal server error")
	}
	c.Error(err)
}

// bindErrorMessage names the query parameters that failed validation
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Sprintf("invalid query parameters: %v", err)
	}

	queryType := reflect.TypeOf(models.AnalyzeQuery{})
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if f, ok := queryType.FieldByName(fe.StructField()); ok {
			name = f.Tag.Get("form")
		}
		names = append(names, name)
	}
	return "missing required parameters: " + strings.Join(names, ", ")
}
