package resolvers

import (
	"context"
	"errors"
	"strconv"

	gql "github.com/graph-gophers/graphql-go"
	"gorm.io/gorm"

	gqlmodels "propshop.GO/graphql/models"
	allocationRepo "propshop.GO/model/repository/allocation"
	equipmentRepo "propshop.GO/model/repository/equipment"
	allocationService "propshop.GO/service/allocation"
)

// Resolver answers the read-only queries over the catalog and ledger.
type Resolver struct {
	db           *gorm.DB
	equipment    *equipmentRepo.EquipmentRepository
	reservations *allocationRepo.ReservationRepository
	ledger       *allocationService.Ledger
}

func NewResolver(db *gorm.DB) (*Resolver, error) {
	eq, err := equipmentRepo.NewEquipmentRepository(db)
	if err != nil {
		return nil, err
	}
	resv := allocationRepo.NewReservationRepository(db)
	return &Resolver{
		db:           db,
		equipment:    eq,
		reservations: resv,
		ledger:       allocationService.NewLedger(resv),
	}, nil
}

func (r *Resolver) Equipment(ctx context.Context, id uint) (*gqlmodels.Equipment, error) {
	item, err := r.equipment.GetItem(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return EquipmentModel(item)
}

func (r *Resolver) Availability(ctx context.Context, equipmentID uint) (*gqlmodels.Availability, error) {
	total, ok := r.equipment.TotalQuantity(equipmentID)
	if !ok {
		return nil, nil
	}
	committed, err := r.reservations.SumAllocated(r.db.WithContext(ctx), equipmentID, 0)
	if err != nil {
		return nil, err
	}
	return &gqlmodels.Availability{
		EquipmentID: toID(equipmentID),
		Total:       int32(total),
		Committed:   int32(committed),
		Available:   int32(total - committed),
	}, nil
}

func (r *Resolver) Reservations(ctx context.Context, productionID uint) ([]*gqlmodels.Reservation, error) {
	list, err := r.reservations.ListByProduction(productionID)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Reservation, 0, len(list))
	for i := range list {
		m, err := ReservationModel(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func toID(id uint) gql.ID {
	return gql.ID(strconv.FormatUint(uint64(id), 10))
}
