package allocation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	allocationEntity "propshop.GO/model/entity/allocation"
	allocationRepo "propshop.GO/model/repository/allocation"
	equipmentRepo "propshop.GO/model/repository/equipment"
	productionRepo "propshop.GO/model/repository/production"
)

// Service owns reservation records end-to-end. Every mutation runs the state
// machine and the ledger inside one transaction, serialized per equipment
// item, and invalidates the cached availability view on success.
type Service struct {
	db           *gorm.DB
	equipment    *equipmentRepo.EquipmentRepository
	productions  *productionRepo.ProductionRepository
	reservations *allocationRepo.ReservationRepository
	ledger       *Ledger
	locks        *keyedMutex
}

func NewService(db *gorm.DB) (*Service, error) {
	eq, err := equipmentRepo.NewEquipmentRepository(db)
	if err != nil {
		return nil, err
	}
	prod, err := productionRepo.NewProductionRepository(db)
	if err != nil {
		return nil, err
	}
	resv := allocationRepo.NewReservationRepository(db)
	return &Service{
		db:           db,
		equipment:    eq,
		productions:  prod,
		reservations: resv,
		ledger:       NewLedger(resv),
		locks:        newKeyedMutex(),
	}, nil
}

// Ledger exposes the availability view (read-side callers: API, GraphQL, cron).
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// CreateInput is the payload for Create.
type CreateInput struct {
	EquipmentID    uint
	ProductionID   uint
	QuantityNeeded int
	Notes          string
}

// Create opens a reservation in requested status. The referenced equipment
// item and production must both exist.
func (s *Service) Create(ctx context.Context, in CreateInput) (*allocationEntity.Reservation, error) {
	if in.QuantityNeeded < 1 {
		return nil, fmt.Errorf("quantity_needed must be at least 1, got %d", in.QuantityNeeded)
	}
	if !s.equipment.ItemExists(in.EquipmentID) {
		return nil, fmt.Errorf("equipment item %d: %w", in.EquipmentID, ErrNotFound)
	}
	if !s.productions.ProductionExists(in.ProductionID) {
		return nil, fmt.Errorf("production %d: %w", in.ProductionID, ErrNotFound)
	}
	resv := &allocationEntity.Reservation{
		EquipmentID:       in.EquipmentID,
		ProductionID:      in.ProductionID,
		QuantityNeeded:    in.QuantityNeeded,
		QuantityAllocated: 0,
		Status:            allocationEntity.StatusRequested,
		Notes:             in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(resv).Error; err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	s.ledger.Invalidate(in.EquipmentID)
	return resv, nil
}

// UpdateInput carries a partial reservation mutation. Nil fields are left
// unchanged; quantity and status changes are validated together.
type UpdateInput struct {
	QuantityNeeded    *int
	QuantityAllocated *int
	Status            *allocationEntity.Status
	Notes             *string
}

// Update applies a quantity and/or status change as one atomic unit. On a
// blocked save the returned error is a *ConflictError and the report carries
// the conflicts; on success the report still carries any warnings.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*allocationEntity.Reservation, Report, error) {
	current, err := s.reservations.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Report{}, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
		}
		return nil, Report{}, err
	}

	unlock := s.locks.lock(current.EquipmentID)
	defer unlock()

	var (
		out    *allocationEntity.Reservation
		report Report
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEquipmentRow(tx, current.EquipmentID); err != nil {
			return err
		}
		resv, err := s.reservations.FindByIDTx(tx, id)
		if err != nil {
			return err
		}

		needed := resv.QuantityNeeded
		if in.QuantityNeeded != nil {
			needed = *in.QuantityNeeded
		}
		if needed < 1 {
			return fmt.Errorf("quantity_needed must be at least 1, got %d", needed)
		}
		allocated := resv.QuantityAllocated
		if in.QuantityAllocated != nil {
			allocated = *in.QuantityAllocated
		}
		allocated = ClampAllocation(needed, allocated)

		proposed := resv.Status
		if in.Status != nil {
			proposed = *in.Status
		}

		available, err := s.ledger.Available(tx, resv.EquipmentID, resv.ReservationID)
		if err != nil {
			return err
		}
		report = ValidateTransition(resv, proposed, allocated, available)
		if !report.Valid {
			return &ConflictError{Report: report}
		}

		resv.Status = proposed
		resv.QuantityNeeded = needed
		resv.QuantityAllocated = allocated
		if in.Notes != nil {
			resv.Notes = *in.Notes
		}
		if err := s.reservations.Save(tx, resv); err != nil {
			return fmt.Errorf("save reservation %d: %w", id, err)
		}
		out = resv
		return nil
	})
	if err != nil {
		return nil, report, err
	}
	s.ledger.Invalidate(out.EquipmentID)
	return out, report, nil
}

// UpdateQuantity revalidates and persists new need/allocation figures.
// Allocation is clamped down when need drops below it.
func (s *Service) UpdateQuantity(ctx context.Context, id uint, newNeeded, newAllocated int) (*allocationEntity.Reservation, Report, error) {
	return s.Update(ctx, id, UpdateInput{QuantityNeeded: &newNeeded, QuantityAllocated: &newAllocated})
}

// TransitionStatus moves the reservation to newStatus, keeping quantities.
func (s *Service) TransitionStatus(ctx context.Context, id uint, newStatus allocationEntity.Status) (*allocationEntity.Reservation, Report, error) {
	return s.Update(ctx, id, UpdateInput{Status: &newStatus})
}

// Checkout is shorthand for a transition to checked-out.
func (s *Service) Checkout(ctx context.Context, id uint) (*allocationEntity.Reservation, Report, error) {
	return s.TransitionStatus(ctx, id, allocationEntity.StatusCheckedOut)
}

// Return is shorthand for a transition to returned.
func (s *Service) Return(ctx context.Context, id uint) (*allocationEntity.Reservation, Report, error) {
	return s.TransitionStatus(ctx, id, allocationEntity.StatusReturned)
}

// Remove deletes a reservation. Only requested and returned reservations may
// be removed; anything between maps to a physical hand-out. The status check
// runs on a row re-read inside the per-item critical section, so a transition
// that lands while Remove waits on the lock is seen before the delete.
func (s *Service) Remove(ctx context.Context, id uint) error {
	current, err := s.reservations.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("reservation %d: %w", id, ErrNotFound)
		}
		return err
	}

	unlock := s.locks.lock(current.EquipmentID)
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEquipmentRow(tx, current.EquipmentID); err != nil {
			return err
		}
		resv, err := s.reservations.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("reservation %d: %w", id, ErrNotFound)
			}
			return err
		}
		if !resv.Removable() {
			return fmt.Errorf("reservation %d in status %s: %w", id, resv.Status, ErrInvalidState)
		}
		if err := s.reservations.Delete(tx, resv); err != nil {
			return fmt.Errorf("delete reservation %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.ledger.Invalidate(current.EquipmentID)
	return nil
}

// Validate runs the transition check without mutating anything (dry-run for
// the validate-status endpoint). quantity nil means "keep current allocation".
func (s *Service) Validate(ctx context.Context, id uint, proposed allocationEntity.Status, quantity *int) (Report, error) {
	resv, err := s.reservations.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Report{}, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
		}
		return Report{}, err
	}
	allocated := resv.QuantityAllocated
	if quantity != nil {
		allocated = *quantity
	}
	// Mirror the save path: a commit would clamp allocation to need before
	// validating, so the dry-run predicts the clamped outcome.
	allocated = ClampAllocation(resv.QuantityNeeded, allocated)
	available, err := s.ledger.Available(s.db.WithContext(ctx), resv.EquipmentID, resv.ReservationID)
	if err != nil {
		return Report{}, err
	}
	return ValidateTransition(resv, proposed, allocated, available), nil
}

// Get returns a reservation by id.
func (s *Service) Get(id uint) (*allocationEntity.Reservation, error) {
	resv, err := s.reservations.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return resv, nil
}

// ListByProduction returns every reservation attached to a production.
func (s *Service) ListByProduction(productionID uint) ([]allocationEntity.Reservation, error) {
	return s.reservations.ListByProduction(productionID)
}

// lockEquipmentRow takes a row lock on the equipment item for the duration of
// the transaction. SQLite (tests) serializes writers at the database level,
// so the clause is only issued on MySQL.
func lockEquipmentRow(tx *gorm.DB, equipmentID uint) error {
	if tx.Dialector.Name() != "mysql" {
		return nil
	}
	return tx.Exec(`SELECT item_id FROM equipment_item WHERE item_id = ? FOR UPDATE`, equipmentID).Error
}
