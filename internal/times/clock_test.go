package times

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRealClock_UTC(t *testing.T) {
	if loc := (RealClock{}).Now().Location(); loc != time.UTC {
		t.Errorf("Now().Location() = %v, want UTC", loc)
	}
}

func TestUUIDGenerator(t *testing.T) {
	var gen UUIDGenerator
	first, second := gen.New(), gen.New()

	for _, id := range []string{first, second} {
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("New() = %q is not a uuid: %v", id, err)
		}
	}
	if first == second {
		t.Errorf("New() returned %q twice", first)
	}
}
