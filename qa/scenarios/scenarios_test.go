package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestPricesDef(t *testing.T) {
	inline := PricesDef{Values: []float64{1, 2, 3}, Shape: "flat", Intervals: 10}
	series, err := inline.Series()
	if err != nil {
		t.Fatalf("inline series: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("inline values ignored, got %d prices", len(series))
	}

	generated := PricesDef{Shape: "flat", Intervals: 10}
	series, err = generated.Series()
	if err != nil {
		t.Fatalf("generated series: %v", err)
	}
	if len(series) != 10 {
		t.Fatalf("expected 10 generated prices, got %d", len(series))
	}

	if _, err := (PricesDef{}).Series(); err == nil {
		t.Fatal("expected error for an empty definition")
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: 1, Max: 2}
	for v, want := range map[float64]bool{0.5: false, 1: true, 1.5: true, 2: true, 2.5: false} {
		if got := r.contains(v); got != want {
			t.Errorf("contains(%v) = %v, want %v", v, got, want)
		}
	}
}
