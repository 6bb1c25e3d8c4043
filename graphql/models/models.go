package models

import (
	gql "github.com/graph-gophers/graphql-go"
)

// Equipment is the GraphQL view of a catalog record.
type Equipment struct {
	ID            gql.ID  `mapstructure:"id"`
	Brand         string  `mapstructure:"brand"`
	Model         string  `mapstructure:"model"`
	SerialNumber  string  `mapstructure:"serial_number"`
	TotalQuantity int32   `mapstructure:"total_quantity"`
	ImagePath     *string `mapstructure:"image_path"`
}

// Availability is the ledger view for one item.
type Availability struct {
	EquipmentID gql.ID `mapstructure:"equipment_id"`
	Total       int32  `mapstructure:"total"`
	Committed   int32  `mapstructure:"committed"`
	Available   int32  `mapstructure:"available"`
}

// Reservation is the GraphQL view of an allocation record.
type Reservation struct {
	ID                gql.ID  `mapstructure:"id"`
	EquipmentID       gql.ID  `mapstructure:"equipment_id"`
	ProductionID      gql.ID  `mapstructure:"production_id"`
	QuantityNeeded    int32   `mapstructure:"quantity_needed"`
	QuantityAllocated int32   `mapstructure:"quantity_allocated"`
	Status            string  `mapstructure:"status"`
	Notes             *string `mapstructure:"notes"`
}
