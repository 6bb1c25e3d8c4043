package allocation

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"propshop.GO/api"
	allocationEntity "propshop.GO/model/entity/allocation"
	allocationService "propshop.GO/service/allocation"
)

func init() {
	api.RegisterModule(RegisterAllocationRoutes)
}

func RegisterAllocationRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/allocations")

	// Service is built lazily so registration works before the DB is pinged.
	var (
		svcOnce sync.Once
		svc     *allocationService.Service
		svcErr  error
	)
	getService := func(db *gorm.DB) (*allocationService.Service, error) {
		svcOnce.Do(func() {
			svc, svcErr = allocationService.NewService(db)
		})
		return svc, svcErr
	}

	// POST /api/allocations – open a reservation in requested status
	g.POST("", func(c echo.Context) error {
		svc, err := getService(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		var body struct {
			EquipmentID    uint   `json:"equipment_id"`
			ProductionID   uint   `json:"production_id"`
			QuantityNeeded int    `json:"quantity_needed"`
			Notes          string `json:"notes"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		resv, err := svc.Create(c.Request().Context(), allocationService.CreateInput{
			EquipmentID:    body.EquipmentID,
			ProductionID:   body.ProductionID,
			QuantityNeeded: body.QuantityNeeded,
			Notes:          body.Notes,
		})
		if err != nil {
			if errors.Is(err, allocationService.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, resv)
	})

	// PUT /api/allocations/:id – quantity/status/notes mutation, 409 on conflicts
	g.PUT("/:id", func(c echo.Context) error {
		svc, err := getService(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		var body struct {
			QuantityNeeded    *int    `json:"quantity_needed"`
			QuantityAllocated *int    `json:"quantity_allocated"`
			Status            *string `json:"status"`
			Notes             *string `json:"notes"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		in := allocationService.UpdateInput{
			QuantityNeeded:    body.QuantityNeeded,
			QuantityAllocated: body.QuantityAllocated,
			Notes:             body.Notes,
		}
		if body.Status != nil {
			st, err := allocationEntity.ParseStatus(*body.Status)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			in.Status = &st
		}

		resv, report, err := svc.Update(c.Request().Context(), id, in)
		if err != nil {
			return mutationError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"reservation": resv,
			"warnings":    report.Warnings,
		})
	})

	// POST /api/allocations/:id/validate-status – dry run, no mutation
	g.POST("/:id/validate-status", func(c echo.Context) error {
		svc, err := getService(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		var body struct {
			NewStatus string `json:"new_status"`
			Quantity  *int   `json:"quantity"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		st, err := allocationEntity.ParseStatus(body.NewStatus)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		report, err := svc.Validate(c.Request().Context(), id, st, body.Quantity)
		if err != nil {
			if errors.Is(err, allocationService.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, report)
	})

	// DELETE /api/allocations/:id – only requested/returned reservations
	g.DELETE("/:id", func(c echo.Context) error {
		svc, err := getService(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := svc.Remove(c.Request().Context(), id); err != nil {
			if errors.Is(err, allocationService.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			if errors.Is(err, allocationService.ErrInvalidState) {
				return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	})

	// POST /api/allocations/:id/checkout and /return – named conveniences
	g.POST("/:id/checkout", transitionHandler(getService, db, allocationEntity.StatusCheckedOut))
	g.POST("/:id/return", transitionHandler(getService, db, allocationEntity.StatusReturned))
}

func transitionHandler(getService func(*gorm.DB) (*allocationService.Service, error), db *gorm.DB, target allocationEntity.Status) echo.HandlerFunc {
	return func(c echo.Context) error {
		svc, err := getService(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		resv, report, err := svc.TransitionStatus(c.Request().Context(), id, target)
		if err != nil {
			return mutationError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"reservation": resv,
			"warnings":    report.Warnings,
		})
	}
}

// mutationError maps service errors to API responses. Conflicts are 409 with
// the full report so the client can display them verbatim.
func mutationError(c echo.Context, err error) error {
	if ce, ok := allocationService.AsConflictError(err); ok {
		return c.JSON(http.StatusConflict, echo.Map{
			"conflicts": ce.Report.Conflicts,
			"warnings":  ce.Report.Warnings,
		})
	}
	if errors.Is(err, allocationService.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	if errors.Is(err, allocationService.ErrInvalidState) {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
