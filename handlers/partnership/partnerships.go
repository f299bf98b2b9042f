package partnership

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/config"
	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/services/dashboard"
	"github.com/sahilchouksey/partner-hub/utils"
	"github.com/sahilchouksey/partner-hub/utils/patch"
	"github.com/sahilchouksey/partner-hub/utils/response"
	"github.com/sahilchouksey/partner-hub/utils/validation"
)

// Store is the part of the partnership API the handlers use.
type Store interface {
	ListPartnerships(ctx context.Context, college string) ([]model.Partnership, error)
	GetPartnership(ctx context.Context, id string) (model.Partnership, error)
	GetPartnershipRaw(ctx context.Context, id string) (json.RawMessage, error)
	UpdatePartnership(ctx context.Context, id string, changes map[string]interface{}) (model.Partnership, error)
}

// PartnershipView is a record with the status it displays as right now.
type PartnershipView struct {
	model.Partnership
	DerivedStatus dashboard.Status `json:"derivedStatus"`
}

// UpdateResult reports what an edit sent upstream.
type UpdateResult struct {
	Changed     bool                   `json:"changed"`
	Changes     map[string]interface{} `json:"changes,omitempty"`
	Partnership PartnershipView        `json:"partnership"`
}

// PartnershipHandler serves list, detail and edit.
type PartnershipHandler struct {
	store Store
	now   func() time.Time
}

// NewPartnershipHandler creates a partnership handler
func NewPartnershipHandler(store Store) *PartnershipHandler {
	return &PartnershipHandler{store: store, now: time.Now}
}

// WithClock overrides the clock used for status derivation.
func (h *PartnershipHandler) WithClock(now func() time.Time) *PartnershipHandler {
	h.now = now
	return h
}

func (h *PartnershipHandler) view(p model.Partnership) PartnershipView {
	return PartnershipView{Partnership: p, DerivedStatus: dashboard.DeriveStatus(p.Status, p.ExpirationDate, h.now())}
}

// ListPartnerships lists the records of one college
// GET /api/v1/partnerships?college=
func (h *PartnershipHandler) ListPartnerships(c *fiber.Ctx) error {
	college := c.Query("college", config.GetLookups().AllColleges)

	records, err := h.store.ListPartnerships(c.UserContext(), college)
	if err != nil {
		return response.FromError(c, err)
	}

	views := make([]PartnershipView, len(records))
	for i, p := range records {
		views[i] = h.view(p)
	}
	return response.Success(c, fiber.Map{
		"partnerships": views,
		"total":        len(views),
	})
}

// GetPartnership returns one record
// GET /api/v1/partnerships/:id
func (h *PartnershipHandler) GetPartnership(c *fiber.Ctx) error {
	p, err := h.store.GetPartnership(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, h.view(p))
}

// UpdatePartnership accepts the full edited form, diffs it against the
// current record and sends only the changed fields. No changes is a no-op.
// PUT /api/v1/partnerships/:id
func (h *PartnershipHandler) UpdatePartnership(c *fiber.Ctx) error {
	id := c.Params("id")
	body := c.Body()

	var form model.PartnershipForm
	if err := json.Unmarshal(body, &form); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := validation.Struct(&form); fields != nil {
		return response.ValidationError(c, fields)
	}

	var edited map[string]interface{}
	if err := json.Unmarshal(body, &edited); err != nil {
		return response.BadRequest(c, "Request body must be a JSON object")
	}

	ctx := c.UserContext()
	raw, err := h.store.GetPartnershipRaw(ctx, id)
	if err != nil {
		return response.FromError(c, err)
	}
	var original map[string]interface{}
	if err := json.Unmarshal(raw, &original); err != nil {
		return response.BadGateway(c, "Partnership service returned an invalid record")
	}

	changes := patch.Diff(original, edited)
	if len(changes) == 0 {
		var current model.Partnership
		if err := json.Unmarshal(raw, &current); err != nil {
			return response.BadGateway(c, "Partnership service returned an invalid record")
		}
		return response.SuccessWithMessage(c, "No changes detected", UpdateResult{Partnership: h.view(current)})
	}

	updated, err := h.store.UpdatePartnership(ctx, id, changes)
	if err != nil {
		return response.FromError(c, err)
	}
	utils.WithRequest(ctx, utils.Log).Info("partnership updated",
		zap.String("id", id), zap.Int("fields", len(changes)))

	return response.SuccessWithMessage(c, "Partnership updated successfully", UpdateResult{
		Changed:     true,
		Changes:     changes,
		Partnership: h.view(updated),
	})
}
