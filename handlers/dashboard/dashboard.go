package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/partner-hub/config"
	"github.com/sahilchouksey/partner-hub/services/dashboard"
	"github.com/sahilchouksey/partner-hub/services/export"
	"github.com/sahilchouksey/partner-hub/utils/response"
)

// DashboardRequest represents the dashboard filter query
type DashboardRequest struct {
	TimeFilter string `query:"timeFilter"`
	College    string `query:"college"`
}

// DashboardHandler serves the aggregated dashboard.
type DashboardHandler struct {
	fetcher    dashboard.Fetcher
	boundaries dashboard.BoundarySource
	now        func() time.Time
}

// NewDashboardHandler creates a dashboard handler. boundaries may be nil.
func NewDashboardHandler(fetcher dashboard.Fetcher, boundaries dashboard.BoundarySource) *DashboardHandler {
	return &DashboardHandler{fetcher: fetcher, boundaries: boundaries, now: time.Now}
}

// WithClock overrides the handler clock.
func (h *DashboardHandler) WithClock(now func() time.Time) *DashboardHandler {
	h.now = now
	return h
}

// parseFilter reads the query; a non-empty message means the query is invalid.
func parseFilter(c *fiber.Ctx) (dashboard.Filter, string) {
	var req DashboardRequest
	if err := c.QueryParser(&req); err != nil {
		return dashboard.Filter{}, "Invalid query parameters"
	}

	lk := config.GetLookups()
	if req.College != "" && req.College != lk.AllColleges && !lk.IsCollege(req.College) {
		return dashboard.Filter{}, "Unknown college: " + req.College
	}
	return dashboard.Filter{TimeFilter: dashboard.TimeFilter(req.TimeFilter), College: req.College}, ""
}

func (h *DashboardHandler) apply(c *fiber.Ctx, filter dashboard.Filter) dashboard.Snapshot {
	view := dashboard.NewView(h.fetcher, h.boundaries, dashboard.WithClock(h.now))
	return view.Apply(c.UserContext(), filter)
}

// GetDashboard returns every aggregate and chart payload for the filter.
// A failed record fetch still answers 200 with an empty dashboard and the
// error in the snapshot.
// GET /api/v1/dashboard?timeFilter=&college=
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	filter, msg := parseFilter(c)
	if msg != "" {
		return response.BadRequest(c, msg)
	}
	snap := h.apply(c, filter)
	if snap.Error != "" {
		return response.SuccessWithMessage(c, "Partnerships could not be loaded", snap)
	}
	return response.Success(c, snap)
}

// ExportDashboard streams the dashboard as an XLSX workbook.
// GET /api/v1/dashboard/export?timeFilter=&college=
func (h *DashboardHandler) ExportDashboard(c *fiber.Ctx) error {
	filter, msg := parseFilter(c)
	if msg != "" {
		return response.BadRequest(c, msg)
	}
	snap := h.apply(c, filter)
	if snap.Error != "" {
		return response.BadGateway(c, snap.Error)
	}

	data, err := export.Dashboard(snap.Dashboard)
	if err != nil {
		return response.InternalServerError(c, "Failed to write Excel file")
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.FileName(snap.Dashboard)+`"`)
	return c.Send(data)
}
