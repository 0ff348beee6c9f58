package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
	"github.com/Aanchal7915/holy-heart-backend/internal/repository"
)

// ServiceHandler manages the clinic's service catalog. Listing and
// fetching are public; creation, edits and withdrawal are admin-only
// and enforced by route middleware.
type ServiceHandler struct {
	Repo *repository.ServiceRepo
}

// NewServiceHandler constructs a ServiceHandler.
func NewServiceHandler(repo *repository.ServiceRepo) *ServiceHandler {
	if repo == nil {
		panic("nil repository passed to NewServiceHandler")
	}
	return &ServiceHandler{Repo: repo}
}

func serviceJSON(s *model.Service) echo.Map {
	return echo.Map{
		"id":               s.ID,
		"name":             s.Name,
		"description":      s.Description,
		"category":         s.Category,
		"base_price_cents": s.BasePriceCents,
		"status":           s.Status,
		"created_at":       s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func validCategory(c string) bool {
	switch c {
	case model.CategoryTest, model.CategoryTreatment, model.CategoryOPDS:
		return true
	}
	return false
}

// Create handles POST /v1/services. The category is fixed at
// creation because it decides the booking mode for every future
// appointment of the service.
func (h *ServiceHandler) Create(c echo.Context) error {
	var body struct {
		Name           string `json:"name"`
		Description    string `json:"description"`
		Category       string `json:"category"`
		BasePriceCents uint32 `json:"base_price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if !validCategory(body.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category must be test, treatment or opds"})
	}
	svc := &model.Service{
		Name:           body.Name,
		Description:    body.Description,
		Category:       body.Category,
		BasePriceCents: body.BasePriceCents,
		Status:         model.ServiceActive,
	}
	if err := h.Repo.Create(c.Request().Context(), svc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create service"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"service": serviceJSON(svc)})
}

// List handles GET /v1/services and returns every active service.
func (h *ServiceHandler) List(c echo.Context) error {
	services, err := h.Repo.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(services))
	for i := range services {
		out = append(out, serviceJSON(&services[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"services": out})
}

// Get handles GET /v1/services/:id.
func (h *ServiceHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	svc, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"service": serviceJSON(svc)})
}

// Update handles PATCH /v1/services/:id. Only provided fields
// change; the category is immutable and withdrawal has its own
// endpoint because of its cascade.
func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	var body struct {
		Name           *string `json:"name"`
		Description    *string `json:"description"`
		Status         *string `json:"status"`
		BasePriceCents *uint32 `json:"base_price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status != nil && *body.Status != model.ServiceActive && *body.Status != model.ServiceInactive {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active or inactive"})
	}
	if err := h.Repo.Update(c.Request().Context(), id, body.Name, body.Description, body.Status, body.BasePriceCents); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update service"})
	}
	svc, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"service": serviceJSON(svc)})
}

// Withdraw handles DELETE /v1/services/:id. Withdrawal is
// permanent: the service disappears from booking and every active
// appointment referencing it is cancelled in the same transaction.
// The response reports how many appointments the cascade cancelled.
func (h *ServiceHandler) Withdraw(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	cancelled, err := h.Repo.Withdraw(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to withdraw service"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"service_id":             id,
		"status":                 model.ServiceWithdrawn,
		"cancelled_appointments": cancelled,
	})
}
