package ir

import "testing"

func TestProfileMap_ResolveExactDemangled(t *testing.T) {
	pm := NewProfileMap()
	pm.Add(&IRFunctionProfile{MangledName: "_ZN6engine7dispatchEv", DemangledName: "engine::dispatch()"})

	p, ok := pm.Resolve("engine::dispatch()")
	if !ok || p.MangledName != "_ZN6engine7dispatchEv" {
		t.Fatalf("Resolve exact demangled failed: %+v, %v", p, ok)
	}
}

func TestProfileMap_ResolveSuffixAtNamespaceBoundary(t *testing.T) {
	pm := NewProfileMap()
	pm.Add(&IRFunctionProfile{MangledName: "_ZN6engine7dispatchEv", DemangledName: "engine::order::dispatch()"})

	p, ok := pm.Resolve("dispatch()")
	if !ok || p.MangledName != "_ZN6engine7dispatchEv" {
		t.Fatalf("Resolve suffix match failed: %+v, %v", p, ok)
	}

	// Must not match a non-boundary substring.
	if _, ok := pm.Resolve("order::dispatchX()"); ok {
		t.Fatal("Resolve matched a non-boundary substring")
	}
}

func TestProfileMap_ResolveFallsBackToMangled(t *testing.T) {
	pm := NewProfileMap()
	pm.Add(&IRFunctionProfile{MangledName: "_Z3fooi"})

	p, ok := pm.Resolve("_Z3fooi")
	if !ok || p.MangledName != "_Z3fooi" {
		t.Fatalf("Resolve mangled fallback failed: %+v, %v", p, ok)
	}
}

func TestProfileMap_ResolveUnknownFails(t *testing.T) {
	pm := NewProfileMap()
	if _, ok := pm.Resolve("nope"); ok {
		t.Fatal("expected Resolve to fail for an unknown name")
	}
}
