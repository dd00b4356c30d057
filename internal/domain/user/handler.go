package user

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

// Handler exposes the staff administration endpoints. All routes live under
// the protected group, so a verified access token and a matching tenant are
// already guaranteed by the time a handler runs.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the user administration routes on the protected group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/users/pending", h.ListPending, auth.RequirePermission("USER:READ"))
	g.POST("/users/approve", h.Approve, auth.RequirePermission("USER:UPDATE"))
}

func (h *Handler) ListPending(c echo.Context) error {
	tenant := auth.TenantFromContext(c.Request().Context())
	if tenant == nil {
		return apperr.Unauthorized("authentication required")
	}

	params := pagination.FromContext(c)
	users, total, err := h.service.ListPending(c.Request().Context(), tenant.ID, params.Limit, params.Offset)
	if err != nil {
		return err
	}
	if users == nil {
		users = []*User{}
	}

	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, params.Limit, params.Offset))
}

type approveRequest struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles,omitempty"`
}

func (h *Handler) Approve(c echo.Context) error {
	tenant := auth.TenantFromContext(c.Request().Context())
	if tenant == nil {
		return apperr.Unauthorized("authentication required")
	}

	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.UserID == "" {
		return apperr.Validation("userId is required")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperr.Validation("userId must be a valid UUID")
	}

	u, err := h.service.Approve(c.Request().Context(), tenant.ID, userID, req.Roles)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User approved successfully",
		"user":    u,
	})
}
