package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labops/labops-api/internal/middleware"
	"github.com/labops/labops-api/internal/models"
	"github.com/labops/labops-api/internal/service"
	appErrors "github.com/labops/labops-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextClaims)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func parsePagination(c *gin.Context) (page, size int) {
	page = 1
	size = 20
	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && l > 0 {
		size = l
	}
	return page, size
}

func parseBoolQuery(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	// Accept both full timestamps and bare dates.
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must be RFC3339 or YYYY-MM-DD")
	}
	return &t, nil
}

// parseChartRequest reads the shared window and filter query params used by
// the chart and export endpoints.
func parseChartRequest(c *gin.Context) (service.ChartRequest, error) {
	var req service.ChartRequest

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return req, err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return req, err
	}
	req.From = from
	req.To = to

	if offset, err := strconv.Atoi(c.DefaultQuery("offset_days", "0")); err == nil {
		req.OffsetDays = offset
	}
	if ids := c.Query("resource_ids"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.ResourceIDs = append(req.ResourceIDs, id)
			}
		}
	}
	req.LaboratoryID = c.Query("laboratory_id")
	req.Category = c.Query("category")
	return req, nil
}
