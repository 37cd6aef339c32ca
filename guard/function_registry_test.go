package guard

import "testing"

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	double := func(args ...any) (any, error) { return args[0].(int64) * 2, nil }

	if err := registry.Register("Double", double); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("double", double); err == nil {
		t.Fatal("expected case-insensitive duplicate to fail")
	}
	if err := registry.Register("", double); err == nil {
		t.Fatal("expected empty name to fail")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Fatal("expected nil function to fail")
	}

	got, err := registry.Call("DOUBLE", int64(4))
	if err != nil || got != int64(8) {
		t.Fatalf("call = %v, %v", got, err)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatal("expected missing function error")
	}

	clone := registry.Clone()
	_ = registry.Register("late", double)
	if names := clone.Names(); len(names) != 1 || names[0] != "Double" {
		t.Fatalf("clone names = %v", names)
	}

	var nilRegistry *FunctionRegistry
	if nilRegistry.Names() != nil || nilRegistry.Clone() != nil {
		t.Fatal("nil registry helpers should return nil")
	}
}
