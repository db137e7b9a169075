package occupancy

import (
	"errors"
	"math/rand"
	"testing"
)

func TestRebalancePrecedence(t *testing.T) {
	cases := []struct {
		name     string
		current  Triple
		field    Field
		value    int
		capacity int
		want     Triple
	}{
		{"children drains adults", Triple{2, 0, 0}, Children, 2, 2, Triple{0, 2, 0}},
		{"adults drains children first", Triple{1, 2, 1}, Adults, 3, 4, Triple{3, 0, 1}},
		{"adults spills into infants", Triple{1, 1, 2}, Adults, 3, 4, Triple{3, 0, 1}},
		{"children spills into infants", Triple{1, 0, 3}, Children, 3, 4, Triple{0, 3, 1}},
		{"infants drains adults then children", Triple{2, 2, 0}, Infants, 3, 4, Triple{0, 1, 3}},
		{"within capacity untouched", Triple{1, 1, 0}, Infants, 1, 4, Triple{1, 1, 1}},
		{"edited field alone over capacity", Triple{1, 1, 1}, Adults, 6, 4, Triple{6, 0, 0}},
		{"negative clamps to zero", Triple{2, 1, 0}, Children, -3, 4, Triple{2, 0, 0}},
		{"unknown capacity", Triple{5, 5, 5}, Adults, 9, 0, Triple{9, 5, 5}},
		{"unknown capacity clamps", Triple{5, 5, 5}, Infants, -1, 0, Triple{5, 5, 0}},
	}
	for _, tc := range cases {
		got := Rebalance(tc.current, tc.field, tc.value, tc.capacity)
		if got != tc.want {
			t.Errorf("%s: Rebalance = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestRebalanceCapacityInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for capacity := 1; capacity <= 6; capacity++ {
		cur := Triple{}
		for i := 0; i < 500; i++ {
			f := Field(rng.Intn(3))
			v := rng.Intn(capacity+3) - 1
			next := Rebalance(cur, f, v, capacity)
			edited := *next.ptr(f)
			if next.Total() > capacity && edited <= capacity {
				t.Fatalf("cap %d: %+v edit %s=%d -> %+v exceeds capacity", capacity, cur, f, v, next)
			}
			if next.Adults < 0 || next.Children < 0 || next.Infants < 0 {
				t.Fatalf("negative count: %+v", next)
			}
			if again := Rebalance(cur, f, v, capacity); again != next {
				t.Fatalf("non-deterministic: %+v vs %+v", next, again)
			}
			cur = next
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Triple{}, 4); !errors.Is(err, ErrNoGuests) {
		t.Fatalf("zero party err = %v", err)
	}
	if err := Validate(Triple{3, 2, 0}, 4); !errors.Is(err, ErrOverCapacity) {
		t.Fatalf("over capacity err = %v", err)
	}
	if err := Validate(Triple{2, -1, 0}, 4); !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("negative count err = %v", err)
	}
	if err := Validate(Triple{9, 0, 0}, 0); err != nil {
		t.Fatalf("unknown capacity err = %v", err)
	}
	if err := Validate(Triple{2, 1, 1}, 4); err != nil {
		t.Fatalf("valid err = %v", err)
	}
}

func TestParseField(t *testing.T) {
	for s, want := range map[string]Field{"Adults": Adults, "children": Children, " infants ": Infants} {
		if f, err := ParseField(s); err != nil || f != want {
			t.Fatalf("ParseField(%q) = %v %v", s, f, err)
		}
	}
	if _, err := ParseField("pets"); err == nil {
		t.Fatal("expected error")
	}
}
