package registry

import (
	"context"
	"testing"
)

func TestRegistry_Register_Resolve(t *testing.T) {
	defer Unregister("availabilityNote")

	Register("availabilityNote", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]string{"note": "checked"}, nil
	})

	got, err := Resolve(context.Background(), "availabilityNote", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m, ok := got.(map[string]string)
	if !ok || m["note"] != "checked" {
		t.Errorf("got %v, want map[note:checked]", got)
	}
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	_, err := Resolve(context.Background(), "nonexistent", nil)
	if err == nil {
		t.Fatal("want error for unknown extension")
	}
}

func TestRegistry_Resolve_PassesArgs(t *testing.T) {
	defer Unregister("argEcho")
	Register("argEcho", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return args["equipment_id"], nil
	})

	got, err := Resolve(context.Background(), "argEcho", map[string]interface{}{"equipment_id": float64(7)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != float64(7) {
		t.Errorf("got %v, want 7", got)
	}
}

func TestRegistry_Names(t *testing.T) {
	defer Unregister("namedExt")
	Register("namedExt", func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil })

	found := false
	for _, n := range Names() {
		if n == "namedExt" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Names() = %v, want to include namedExt", Names())
	}
}
