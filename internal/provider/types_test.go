package provider

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFlexibleUnmarshal(t *testing.T) {
	t.Parallel()

	tests := map[string]float64{
		`42`:     42,
		`"42"`:   42,
		`3.14`:   3.14,
		`"3.14"`: 3.14,
		`" 7 "`:  7,
		`null`:   0,
		`""`:     0,
	}
	for in, want := range tests {
		var f Flexible
		if err := json.Unmarshal([]byte(in), &f); err != nil {
			t.Fatalf("%s: unexpected error: %v", in, err)
		}
		if f.Float() != want {
			t.Fatalf("%s: expected %f, got %f", in, want, f.Float())
		}
	}
}

func TestFlexibleUnmarshalInvalid(t *testing.T) {
	t.Parallel()

	var f Flexible
	if err := json.Unmarshal([]byte(`"not a number"`), &f); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}

func TestFlexibleInStruct(t *testing.T) {
	t.Parallel()

	var row struct {
		Price Flexible `json:"price"`
		Rate  Flexible `json:"rate"`
	}
	if err := json.Unmarshal([]byte(`{"price": "97000.5", "rate": 0.0003}`), &row); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Price.Float() != 97000.5 || row.Rate.Float() != 0.0003 {
		t.Fatalf("unexpected values: %+v", row)
	}
}

func TestIncompletefWrapsSentinel(t *testing.T) {
	t.Parallel()

	err := incompletef("payload missing %s", "field")
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if err.Error() != "payload missing field: incomplete provider payload" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
