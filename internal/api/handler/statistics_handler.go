package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaeso/delivery-api/internal/core/ports"
)

type StatisticsHandler struct {
	service ports.StatisticsService
}

func NewStatisticsHandler(service ports.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: service}
}

// Transporters handles GET /transporter-statistics.
//
// @Summary      Delivery statistics per transporter
// @Description  Transporters get their own report; staff get one per transporter.
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   transporterReportResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /transporter-statistics [get]
func (h *StatisticsHandler) Transporters(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	reports, err := h.service.TransporterStatistics(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransporterReportResponses(reports))
}
