package simulator

import "testing"

func TestFlat(t *testing.T) {
	got := Flat(48, 50)
	if len(got) != 48 {
		t.Fatalf("expected 48 intervals, got %d", len(got))
	}
	for i, p := range got {
		if p != 50 {
			t.Fatalf("price[%d] = %v, want 50", i, p)
		}
	}
}

func TestTwoLevel(t *testing.T) {
	got := TwoLevel(24, 6, 10, 100)
	for i, p := range got {
		want := 10.0
		if (i/6)%2 == 1 {
			want = 100
		}
		if p != want {
			t.Fatalf("price[%d] = %v, want %v", i, p, want)
		}
	}
}

func TestDuckCurve(t *testing.T) {
	got := DuckCurve(288, 60, 45, 80)
	midnight := got[0]
	noon := got[len(got)/2]
	evening := got[288*19/24]
	if noon >= midnight {
		t.Fatalf("midday %v not depressed below overnight %v", noon, midnight)
	}
	if evening <= midnight {
		t.Fatalf("evening %v not above overnight %v", evening, midnight)
	}
}

func TestSpikyDeterministic(t *testing.T) {
	a := Spiky(100, 50, 10, 8, 42)
	b := Spiky(100, 50, 10, 8, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
	c := Spiky(100, 50, 10, 8, 43)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical series")
	}
	for i := 9; i < 100; i += 10 {
		if a[i] != 50*8 {
			t.Fatalf("spike missing at %d: %v", i, a[i])
		}
	}
}

func TestGenerate(t *testing.T) {
	for _, shape := range []string{"flat", "sawtooth", "duck", "spiky"} {
		got, err := Generate(shape, 288, 1)
		if err != nil {
			t.Fatalf("%s: %v", shape, err)
		}
		if len(got) != 288 {
			t.Fatalf("%s: expected 288 intervals, got %d", shape, len(got))
		}
	}
	if _, err := Generate("triangle", 10, 1); err == nil {
		t.Fatalf("expected error for unknown shape")
	}
}
