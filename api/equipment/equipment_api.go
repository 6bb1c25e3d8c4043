package equipment

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"propshop.GO/api"
	"propshop.GO/config"
	allocationService "propshop.GO/service/allocation"
	replicationService "propshop.GO/service/replication"
)

func init() {
	api.RegisterModule(RegisterEquipmentRoutes)
}

func RegisterEquipmentRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/equipment")

	// Engine and service are built lazily so registration works before the
	// DB is pinged.
	var (
		initOnce sync.Once
		engine   *replicationService.Engine
		svc      *allocationService.Service
		initErr  error
	)
	getEngines := func(db *gorm.DB) (*replicationService.Engine, *allocationService.Service, error) {
		initOnce.Do(func() {
			mediaDir := ""
			copyTimeout := time.Duration(0)
			if config.AppConfig != nil {
				mediaDir = config.AppConfig.MediaDir
				copyTimeout = config.AppConfig.CopyTimeout
			}
			engine, initErr = replicationService.NewEngine(db, mediaDir, copyTimeout)
			if initErr != nil {
				return
			}
			svc, initErr = allocationService.NewService(db)
		})
		return engine, svc, initErr
	}

	// POST /api/equipment/batch-duplicate – sequential copy job, partial
	// failures collected in the result
	g.POST("/batch-duplicate", func(c echo.Context) error {
		start := time.Now()
		engine, _, err := getEngines(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		var body struct {
			EquipmentIDs []uint `json:"equipment_ids"`
			CopyCount    int    `json:"copy_count"`
			IDPattern    string `json:"id_pattern"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.EquipmentIDs) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "equipment_ids is required and must not be empty"})
		}

		res, err := engine.Replicate(c.Request().Context(), body.EquipmentIDs, body.CopyCount, body.IDPattern)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			switch {
			case errors.Is(err, replicationService.ErrInvalidPattern),
				errors.Is(err, replicationService.ErrInvalidCount):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			case errors.Is(err, replicationService.ErrNoSources):
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			default:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "request_duration_ms": duration})
			}
		}

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{
			"job_id":              res.JobID,
			"created":             res.Created,
			"failures":            res.Failures,
			"image_copy_failures": res.ImageCopyFailures,
			"progress":            res.Progress,
			"request_duration_ms": duration,
		})
	})

	// GET /api/equipment/batch-duplicate/:jobID/progress – polling
	g.GET("/batch-duplicate/:jobID/progress", func(c echo.Context) error {
		jobID := c.Param("jobID")
		pct, ok := replicationService.JobProgress(jobID)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown job " + jobID})
		}
		return c.JSON(http.StatusOK, echo.Map{"job_id": jobID, "progress": pct})
	})

	// GET /api/equipment/availability?ids=1,2,3 – batch ledger view
	g.GET("/availability", func(c echo.Context) error {
		_, svc, err := getEngines(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		raw := strings.Split(c.QueryParam("ids"), ",")
		ids := make([]uint, 0, len(raw))
		for _, s := range raw {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			id, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id " + s})
			}
			ids = append(ids, uint(id))
		}
		if len(ids) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids query param is required"})
		}

		type row struct {
			EquipmentID uint `json:"equipment_id"`
			Available   int  `json:"available"`
		}
		out := make([]row, len(ids))
		var eg errgroup.Group
		for i, id := range ids {
			i, id := i, id
			eg.Go(func() error {
				n, err := svc.Ledger().AvailableCached(db, id)
				if err != nil {
					return err
				}
				out[i] = row{EquipmentID: id, Available: n}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"availability": out})
	})
}
