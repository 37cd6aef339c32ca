package clone

import (
	"reflect"
	"testing"
	"time"
)

type loadout struct {
	Weapon  string
	Charms  []string
	Stats   map[string]int
	Partner *loadout
	Extra   any
	secret  int
}

func TestOfDetachesNestedContainers(t *testing.T) {
	original := loadout{
		Weapon:  "sword",
		Charms:  []string{"luck"},
		Stats:   map[string]int{"str": 3},
		Partner: &loadout{Weapon: "bow"},
		Extra:   map[string]any{"k": []any{"v"}},
	}

	copied := Of(original)
	if !reflect.DeepEqual(original, copied) {
		t.Fatalf("expected equal copy, got %#v", copied)
	}

	copied.Charms[0] = "doom"
	copied.Stats["str"] = 99
	copied.Partner.Weapon = "axe"
	copied.Extra.(map[string]any)["k"].([]any)[0] = "changed"

	if original.Charms[0] != "luck" {
		t.Fatalf("slice aliased: %v", original.Charms)
	}
	if original.Stats["str"] != 3 {
		t.Fatalf("map aliased: %v", original.Stats)
	}
	if original.Partner.Weapon != "bow" {
		t.Fatalf("pointer aliased: %v", original.Partner.Weapon)
	}
	if original.Extra.(map[string]any)["k"].([]any)[0] != "v" {
		t.Fatalf("interface payload aliased: %v", original.Extra)
	}
}

func TestOfCopiesUnexportedFieldsShallowly(t *testing.T) {
	copied := Of(loadout{Weapon: "staff", secret: 7})
	if copied.Weapon != "staff" || copied.secret != 7 {
		t.Fatalf("expected fields copied, got %+v", copied)
	}

	stamp := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	if got := Of(stamp); !got.Equal(stamp) {
		t.Fatalf("time value lost its state: %v", got)
	}
}

func TestOfHandlesNilAndScalars(t *testing.T) {
	var nilMap map[string]int
	if got := Of(nilMap); got != nil {
		t.Fatalf("expected nil map, got %v", got)
	}
	var nilAny any
	if got := Of(nilAny); got != nil {
		t.Fatalf("expected nil interface, got %v", got)
	}
	if got := Of(42); got != 42 {
		t.Fatalf("expected scalar copy, got %d", got)
	}
}
