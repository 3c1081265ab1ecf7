package patch

import "testing"

func TestDepsEqualIgnoresOrder(t *testing.T) {
	var a, b, c ID
	a[0], b[0], c[0] = 1, 2, 3

	d1 := Deps{a, b, c}
	d2 := Deps{c, a, b}

	if !d1.Equal(d2) {
		t.Fatalf("expected %v to equal %v", d1, d2)
	}
}

func TestDepsEqualRejectsDifferentSizes(t *testing.T) {
	var a, b ID
	a[0], b[0] = 1, 2

	if (Deps{a}).Equal(Deps{a, b}) {
		t.Fatal("deps of different cardinality must not be equal")
	}
}

func TestNewDepsEmptyIsRoot(t *testing.T) {
	d := NewDeps()
	if len(d) != 0 {
		t.Fatalf("expected empty Deps, got %v", d)
	}
}
