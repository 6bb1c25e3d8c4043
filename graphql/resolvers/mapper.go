package resolvers

import (
	"fmt"
	"reflect"
	"strconv"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/mitchellh/mapstructure"

	gqlmodels "propshop.GO/graphql/models"
	allocationEntity "propshop.GO/model/entity/allocation"
	equipmentEntity "propshop.GO/model/entity/equipment"
)

// numberToIDHook converts numeric primary keys to graphql IDs.
func numberToIDHook() mapstructure.DecodeHookFunc {
	idType := reflect.TypeOf(gql.ID(""))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != idType {
			return data, nil
		}
		switch v := data.(type) {
		case uint:
			return gql.ID(strconv.FormatUint(uint64(v), 10)), nil
		case uint64:
			return gql.ID(strconv.FormatUint(v, 10)), nil
		case int:
			return gql.ID(strconv.Itoa(v)), nil
		case string:
			return gql.ID(v), nil
		}
		return data, nil
	}
}

// emptyToNilHook maps empty strings to nil for nullable string fields.
func emptyToNilHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() == reflect.String && to.Kind() == reflect.Ptr && to.Elem().Kind() == reflect.String {
			if s, ok := data.(string); ok && s == "" {
				return (*string)(nil), nil
			}
		}
		return data, nil
	}
}

var modelDecodeHook = mapstructure.ComposeDecodeHookFunc(
	numberToIDHook(),
	emptyToNilHook(),
)

func decodeModel(flat map[string]interface{}, out interface{}) error {
	cfg := &mapstructure.DecoderConfig{
		DecodeHook: modelDecodeHook,
		Result:     out,
		TagName:    "mapstructure",
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return dec.Decode(flat)
}

// EquipmentModel maps a catalog entity to its GraphQL view.
func EquipmentModel(item *equipmentEntity.EquipmentItem) (*gqlmodels.Equipment, error) {
	flat := map[string]interface{}{
		"id":             item.ItemID,
		"brand":          item.Brand,
		"model":          item.Model,
		"serial_number":  item.SerialNumber,
		"total_quantity": item.TotalQuantity,
		"image_path":     item.ImagePath,
	}
	var out gqlmodels.Equipment
	if err := decodeModel(flat, &out); err != nil {
		return nil, fmt.Errorf("map equipment %d: %w", item.ItemID, err)
	}
	return &out, nil
}

// ReservationModel maps a reservation entity to its GraphQL view.
func ReservationModel(resv *allocationEntity.Reservation) (*gqlmodels.Reservation, error) {
	flat := map[string]interface{}{
		"id":                 resv.ReservationID,
		"equipment_id":       resv.EquipmentID,
		"production_id":      resv.ProductionID,
		"quantity_needed":    resv.QuantityNeeded,
		"quantity_allocated": resv.QuantityAllocated,
		"status":             string(resv.Status),
		"notes":              resv.Notes,
	}
	var out gqlmodels.Reservation
	if err := decodeModel(flat, &out); err != nil {
		return nil, fmt.Errorf("map reservation %d: %w", resv.ReservationID, err)
	}
	return &out, nil
}
