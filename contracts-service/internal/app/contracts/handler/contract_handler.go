package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/contracts-service/internal/app/contracts/service"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/logger"
	"gamarriando/pkg/schema"

	"github.com/gin-gonic/gin"
)

// Максимальный размер проверяемого payload
const maxBodyBytes = 1 << 20

// ContractHandler обслуживает проверку payload и журнал нарушений
type ContractHandler struct {
	validationSvc service.ValidationServiceInterface
}

func NewContractHandler(validationSvc service.ValidationServiceInterface) *ContractHandler {
	return &ContractHandler{validationSvc: validationSvc}
}

// Validate обрабатывает POST /api/v1/validate/:schema
// 200 - нормализованный payload, 422 - список нарушений
func (h *ContractHandler) Validate(c *gin.Context) {
	name := c.Param("schema")
	c.Set("schema", name)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, contracts.NewAPIError("invalid_body", "Failed to read request body", nil))
		return
	}
	if len(body) > maxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, contracts.NewAPIError("payload_too_large", "Request body is too large", nil))
		return
	}

	meta := entity.RequestMeta{RequestID: logger.RequestID(c)}
	if claims, ok := claimsFrom(c); ok {
		meta.Subject = claims.Sub
	}

	verdict, err := h.validationSvc.Validate(c.Request.Context(), name, body, meta)
	if err != nil {
		if errors.Is(err, service.ErrSchemaNotFound) {
			c.JSON(http.StatusNotFound, contracts.NewAPIError("schema_not_found", "Unknown schema: "+name, nil))
			return
		}
		logger.Error().Err(err).Str("schema", name).Msg("Validation failed unexpectedly")
		c.JSON(http.StatusInternalServerError, contracts.NewAPIError("internal_error", "Failed to validate payload", nil))
		return
	}

	cacheStatus := "miss"
	if verdict.Cached {
		cacheStatus = "hit"
	}
	c.Header("X-Verdict-Cache", cacheStatus)

	if !verdict.Valid {
		c.JSON(http.StatusUnprocessableEntity, contracts.NewAPIError(
			"validation_failed",
			"Payload does not match schema "+name,
			map[string]any{"schema": name, "issues": verdict.Issues},
		))
		return
	}

	c.JSON(http.StatusOK, contracts.NewAPIResponse(verdict.Normalized, ""))
}

// ListSchemas обрабатывает GET /api/v1/schemas
func (h *ContractHandler) ListSchemas(c *gin.Context) {
	names := h.validationSvc.SchemaNames()
	c.JSON(http.StatusOK, contracts.NewAPIResponse(entity.SchemaListResponse{
		Schemas: names,
		Total:   len(names),
	}, ""))
}

// ListViolations обрабатывает GET /api/v1/violations (только admin)
func (h *ContractHandler) ListViolations(c *gin.Context) {
	page, err := paginationFromQuery(c)
	if err != nil {
		issues, _ := schema.IssuesOf(err)
		c.JSON(http.StatusBadRequest, contracts.NewAPIError("invalid_pagination", "Invalid pagination parameters",
			map[string]any{"issues": issues}))
		return
	}

	var filter entity.ViolationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, contracts.NewAPIError("invalid_filter", "Invalid filter parameters", nil))
		return
	}

	result, err := h.validationSvc.ListViolations(c.Request.Context(), filter, page)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSortField) {
			c.JSON(http.StatusBadRequest, contracts.NewAPIError("invalid_sort_field", "Unsupported sortBy: "+page.SortBy, nil))
			return
		}
		logger.Error().Err(err).Msg("Failed to list violations")
		c.JSON(http.StatusInternalServerError, contracts.NewAPIError("internal_error", "Failed to list violations", nil))
		return
	}

	c.JSON(http.StatusOK, contracts.NewAPIResponse(result, ""))
}

// Introspect обрабатывает POST /api/v1/auth/introspect.
// Токен уже проверен Authenticate, здесь только отдаем claims.
func (h *ContractHandler) Introspect(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		abortUnauthorized(c, "Unauthorized", nil)
		return
	}
	c.JSON(http.StatusOK, contracts.NewAPIResponse(*claims, ""))
}

// paginationFromQuery прогоняет query-параметры через PaginationSchema.
// Нечисловые page/size передаются строкой, чтобы схема вернула ошибку типа.
func paginationFromQuery(c *gin.Context) (contracts.Pagination, error) {
	raw := make(map[string]any, 4)
	for _, key := range []string{"page", "size"} {
		v, ok := c.GetQuery(key)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil {
			raw[key] = n
		} else {
			raw[key] = v
		}
	}
	for _, key := range []string{"sortBy", "sortOrder"} {
		if v, ok := c.GetQuery(key); ok {
			raw[key] = v
		}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return contracts.Pagination{}, err
	}
	return contracts.PaginationSchema.Parse(data)
}
