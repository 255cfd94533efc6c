package qdrantDB

import (
	"testing"

	"github.com/google/uuid"
)

func TestPointID_UUIDPassesThrough(t *testing.T) {
	id := uuid.New().String()
	if got := pointID(id).GetUuid(); got != id {
		t.Errorf("UUID id rewritten to %q; want %q unchanged", got, id)
	}
}

func TestPointID_NonUUIDMapsDeterministically(t *testing.T) {
	first := pointID("msg-7").GetUuid()
	second := pointID("msg-7").GetUuid()
	other := pointID("msg-8").GetUuid()

	if first != second {
		t.Errorf("Same message id produced different point ids: %q vs %q", first, second)
	}
	if first == other {
		t.Error("Different message ids collided on one point id")
	}
	// the server rejects anything that doesn't parse as a UUID
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("Derived point id %q is not a valid UUID: %v", first, err)
	}
}
