package graphqlserver

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"propshop.GO/api"
	"propshop.GO/graphql"
	gqlmodels "propshop.GO/graphql/models"
	"propshop.GO/graphql/registry"
	"propshop.GO/graphql/resolvers"
)

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

// RootResolver is the root for graphql-go.
type RootResolver struct {
	DB *gorm.DB

	once     sync.Once
	resolver *resolvers.Resolver
	initErr  error
}

func (r *RootResolver) readResolver() (*resolvers.Resolver, error) {
	r.once.Do(func() {
		r.resolver, r.initErr = resolvers.NewResolver(r.DB)
	})
	return r.resolver, r.initErr
}

// EquipmentArgs matches the equipment query arguments.
type EquipmentArgs struct {
	ID gql.ID
}

func (r *RootResolver) Equipment(ctx context.Context, args EquipmentArgs) (*gqlmodels.Equipment, error) {
	res, err := r.readResolver()
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	return res.Equipment(ctx, id)
}

// AvailabilityArgs matches the availability query arguments.
type AvailabilityArgs struct {
	EquipmentID gql.ID
}

func (r *RootResolver) Availability(ctx context.Context, args AvailabilityArgs) (*gqlmodels.Availability, error) {
	res, err := r.readResolver()
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.EquipmentID)
	if err != nil {
		return nil, err
	}
	return res.Availability(ctx, id)
}

// ReservationsArgs matches the reservations query arguments.
type ReservationsArgs struct {
	ProductionID gql.ID
}

func (r *RootResolver) Reservations(ctx context.Context, args ReservationsArgs) ([]*gqlmodels.Reservation, error) {
	res, err := r.readResolver()
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.ProductionID)
	if err != nil {
		return nil, err
	}
	return res.Reservations(ctx, id)
}

// ExtensionArgs for extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *RootResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func parseID(id gql.ID) (uint, error) {
	n, err := strconv.ParseUint(string(id), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{DB: db}, gql.UseFieldResolvers())
}

// RegisterGraphQLRoutes mounts POST /graphql on the root Echo instance.
func RegisterGraphQLRoutes(e *echo.Echo, db *gorm.DB) {
	schema, err := NewSchema(db)
	if err != nil {
		panic("graphqlserver: schema parse failed: " + err.Error())
	}
	e.POST("/graphql", echo.WrapHandler(&relay.Handler{Schema: schema}))
}
