package replication

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	"propshop.GO/core/cache"
	equipmentEntity "propshop.GO/model/entity/equipment"
	equipmentRepo "propshop.GO/model/repository/equipment"
)

// PlaceholderToken is the copy-index slot in an identifier pattern,
// e.g. "SN-{n}" yields SN-1, SN-2, ...
const PlaceholderToken = "{n}"

// Copy count bounds for one job.
const (
	MinCopyCount = 1
	MaxCopyCount = 50
)

var (
	// ErrInvalidPattern is returned when the identifier pattern does not
	// contain exactly one placeholder token. No catalog call is made.
	ErrInvalidPattern = errors.New("identifier pattern must contain exactly one " + PlaceholderToken + " placeholder")

	// ErrInvalidCount is returned when the copy count is outside [1, 50].
	ErrInvalidCount = fmt.Errorf("copy count must be between %d and %d", MinCopyCount, MaxCopyCount)

	// ErrNoSources is returned when none of the requested source items exist.
	ErrNoSources = errors.New("no source items found")
)

// CreatedCopy records one successful duplicate.
type CreatedCopy struct {
	SourceID     uint   `json:"source_id"`
	CopyIndex    int    `json:"copy_index"`
	ItemID       uint   `json:"item_id"`
	SerialNumber string `json:"serial_number"`
	ImageCopied  bool   `json:"image_copied"`
}

// CopyFailure records one failed copy attempt. A failure never aborts the job.
type CopyFailure struct {
	SourceID     uint   `json:"source_id"`
	CopyIndex    int    `json:"copy_index"`
	SerialNumber string `json:"serial_number"`
	Error        string `json:"error"`
}

// ImageCopyFailure records a reference-image copy that failed for an
// otherwise successful duplicate.
type ImageCopyFailure struct {
	SourceID     uint   `json:"source_id"`
	CopyIndex    int    `json:"copy_index"`
	SerialNumber string `json:"serial_number"`
	Error        string `json:"error"`
}

// Result is the aggregate outcome of one replication job.
type Result struct {
	JobID             string             `json:"job_id"`
	Created           []CreatedCopy      `json:"created"`
	Failures          []CopyFailure      `json:"failures"`
	ImageCopyFailures []ImageCopyFailure `json:"image_copy_failures"`
	Progress          int                `json:"progress"`
}

// Engine sequentially creates identifier-distinct copies of catalog items.
// Each copy is an independent atomic creation; the job as a whole is not
// atomic and partial success is the expected outcome.
type Engine struct {
	db          *gorm.DB
	catalog     *equipmentRepo.EquipmentRepository
	images      *ImageCopier
	copyTimeout time.Duration
}

func NewEngine(db *gorm.DB, mediaDir string, copyTimeout time.Duration) (*Engine, error) {
	catalog, err := equipmentRepo.NewEquipmentRepository(db)
	if err != nil {
		return nil, err
	}
	if copyTimeout <= 0 {
		copyTimeout = 10 * time.Second
	}
	return &Engine{
		db:          db,
		catalog:     catalog,
		images:      NewImageCopier(mediaDir),
		copyTimeout: copyTimeout,
	}, nil
}

// Replicate creates copyCount copies of every source item, in input order,
// one at a time. Identifier collisions and other per-copy errors are recorded
// and the loop continues; only input validation or a total inability to read
// the sources fails the call. Cancelling ctx stops further iterations without
// rolling back copies already created.
func (e *Engine) Replicate(ctx context.Context, sourceIDs []uint, copyCount int, idPattern string) (*Result, error) {
	if strings.Count(idPattern, PlaceholderToken) != 1 {
		return nil, ErrInvalidPattern
	}
	if copyCount < MinCopyCount || copyCount > MaxCopyCount {
		return nil, ErrInvalidCount
	}

	sources, err := e.catalog.GetByIDs(sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("load source items: %w", err)
	}
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	result := &Result{
		JobID:             fmt.Sprintf("dup-%d", time.Now().UnixNano()),
		Created:           []CreatedCopy{},
		Failures:          []CopyFailure{},
		ImageCopyFailures: []ImageCopyFailure{},
	}
	// A requested id with no catalog row still gets a failure entry so the
	// caller can tell it was skipped rather than silently dropped.
	found := make(map[uint]bool, len(sources))
	for _, source := range sources {
		found[source.ItemID] = true
	}
	for _, id := range sourceIDs {
		if !found[id] {
			result.Failures = append(result.Failures, CopyFailure{
				SourceID: id,
				Error:    "source item not found",
			})
		}
	}
	// Cross-item uniqueness: with several sources in one job the pattern is
	// applied to "<sourceSerial>-<n>" instead of "<n>" alone.
	namespaced := len(sources) > 1
	total := len(sources) * copyCount
	completed := 0
	publishProgress(result.JobID, 0)

	for _, source := range sources {
		source := source
		for i := 1; i <= copyCount; i++ {
			if ctx.Err() != nil {
				result.Progress = completed * 100 / total
				return result, ctx.Err()
			}

			serial := expandPattern(idPattern, source.SerialNumber, i, namespaced)
			copyItem, err := cloneItemFields(&source)
			if err == nil {
				copyItem.SerialNumber = serial
				err = e.createCopy(ctx, copyItem)
			}
			if err != nil {
				result.Failures = append(result.Failures, CopyFailure{
					SourceID:     source.ItemID,
					CopyIndex:    i,
					SerialNumber: serial,
					Error:        err.Error(),
				})
			} else {
				created := CreatedCopy{
					SourceID:     source.ItemID,
					CopyIndex:    i,
					ItemID:       copyItem.ItemID,
					SerialNumber: serial,
				}
				if source.ImagePath != "" {
					newPath, imgErr := e.images.CopyForDuplicate(source.ImagePath, serial)
					if imgErr != nil {
						result.ImageCopyFailures = append(result.ImageCopyFailures, ImageCopyFailure{
							SourceID:     source.ItemID,
							CopyIndex:    i,
							SerialNumber: serial,
							Error:        imgErr.Error(),
						})
					} else {
						created.ImageCopied = true
						if upErr := e.db.Model(copyItem).Update("image_path", newPath).Error; upErr != nil {
							result.ImageCopyFailures = append(result.ImageCopyFailures, ImageCopyFailure{
								SourceID:     source.ItemID,
								CopyIndex:    i,
								SerialNumber: serial,
								Error:        upErr.Error(),
							})
							created.ImageCopied = false
						}
					}
				}
				result.Created = append(result.Created, created)
			}

			completed++
			publishProgress(result.JobID, completed*100/total)
		}
	}

	result.Progress = completed * 100 / total
	return result, nil
}

// createCopy performs one bounded, independent catalog insert.
func (e *Engine) createCopy(ctx context.Context, item *equipmentEntity.EquipmentItem) error {
	cctx, cancel := context.WithTimeout(ctx, e.copyTimeout)
	defer cancel()
	return e.catalog.CreateItemTx(e.db.WithContext(cctx), item)
}

// expandPattern substitutes the copy index (optionally namespaced by the
// source serial) into the identifier pattern.
func expandPattern(pattern, sourceSerial string, n int, namespaced bool) string {
	sub := strconv.Itoa(n)
	if namespaced {
		sub = sourceSerial + "-" + sub
	}
	return strings.Replace(pattern, PlaceholderToken, sub, 1)
}

// cloneItemFields copies every non-identity field of the source into a fresh
// entity via the flat-map round trip (identity fields carry mapstructure:"-").
func cloneItemFields(src *equipmentEntity.EquipmentItem) (*equipmentEntity.EquipmentItem, error) {
	flat := map[string]interface{}{}
	if err := mapstructure.Decode(src, &flat); err != nil {
		return nil, fmt.Errorf("flatten source item %d: %w", src.ItemID, err)
	}
	out := &equipmentEntity.EquipmentItem{}
	if err := mapstructure.Decode(flat, out); err != nil {
		return nil, fmt.Errorf("build copy of item %d: %w", src.ItemID, err)
	}
	return out, nil
}

// --- Progress polling ---

const progressTTL = int64(3600)

func publishProgress(jobID string, pct int) {
	cache.GetInstance().SetN([]interface{}{"replication", jobID}, pct, progressTTL, []string{"replication:jobs"})
}

// JobProgress returns the running progress (0-100) for a job id.
func JobProgress(jobID string) (int, bool) {
	v, ok := cache.GetInstance().GetN("replication", jobID)
	if !ok {
		return 0, false
	}
	pct, isInt := v.(int)
	return pct, isInt && ok
}
