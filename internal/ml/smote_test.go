package ml

import (
	"reflect"
	"testing"
)

// imbalanced builds a small skewed dataset: nNeg legit rows spread along one
// axis and nPos fraud rows clustered apart from them.
func imbalanced(nNeg, nPos int) *Dataset {
	d := &Dataset{}
	for i := 0; i < nNeg; i++ {
		d.X = append(d.X, []float64{float64(i), 0})
		d.Y = append(d.Y, 0)
	}
	for i := 0; i < nPos; i++ {
		d.X = append(d.X, []float64{100 + float64(i), 50})
		d.Y = append(d.Y, 1)
	}
	return d
}

func TestSMOTE(t *testing.T) {
	t.Run("BalancesToParity", func(t *testing.T) {
		data := imbalanced(50, 5)
		out, err := SMOTE(data, DefaultSMOTEConfig())
		if err != nil {
			t.Fatalf("SMOTE failed: %v", err)
		}
		neg, pos := out.Counts()
		if neg != pos {
			t.Errorf("classes not balanced: neg=%d pos=%d", neg, pos)
		}
		if out.Len() != 100 {
			t.Errorf("len = %d, want 100", out.Len())
		}
	})

	t.Run("OriginalsPreserved", func(t *testing.T) {
		data := imbalanced(20, 4)
		out, err := SMOTE(data, DefaultSMOTEConfig())
		if err != nil {
			t.Fatalf("SMOTE failed: %v", err)
		}
		for i := range data.X {
			if !reflect.DeepEqual(out.X[i], data.X[i]) || out.Y[i] != data.Y[i] {
				t.Fatalf("original row %d mutated", i)
			}
		}
	})

	t.Run("SyntheticRowsInterpolate", func(t *testing.T) {
		data := imbalanced(20, 4)
		out, err := SMOTE(data, DefaultSMOTEConfig())
		if err != nil {
			t.Fatalf("SMOTE failed: %v", err)
		}
		// Minority rows live in [100, 104) x {50}; interpolations must too.
		for i := data.Len(); i < out.Len(); i++ {
			if out.Y[i] != 1 {
				t.Fatalf("synthetic row %d has label %d, want 1", i, out.Y[i])
			}
			if out.X[i][0] < 100 || out.X[i][0] > 104 || out.X[i][1] != 50 {
				t.Errorf("synthetic row %v outside the minority hull", out.X[i])
			}
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		data := imbalanced(30, 3)
		a, err := SMOTE(data, SMOTEConfig{KNeighbors: 2, Seed: 7})
		if err != nil {
			t.Fatalf("SMOTE failed: %v", err)
		}
		b, err := SMOTE(data, SMOTEConfig{KNeighbors: 2, Seed: 7})
		if err != nil {
			t.Fatalf("SMOTE failed: %v", err)
		}
		if !reflect.DeepEqual(a.X, b.X) {
			t.Error("same seed produced different synthetic samples")
		}
	})

	t.Run("AlreadyBalanced", func(t *testing.T) {
		data := imbalanced(10, 10)
		out, err := SMOTE(data, DefaultSMOTEConfig())
		if err != nil {
			t.Fatalf("SMOTE failed: %v", err)
		}
		if out.Len() != data.Len() {
			t.Errorf("balanced input grew from %d to %d", data.Len(), out.Len())
		}
	})

	t.Run("SingleClass", func(t *testing.T) {
		data := imbalanced(10, 0)
		if _, err := SMOTE(data, DefaultSMOTEConfig()); err == nil {
			t.Error("expected error for single-class input")
		}
	})

	t.Run("OneMinoritySample", func(t *testing.T) {
		data := imbalanced(10, 1)
		if _, err := SMOTE(data, DefaultSMOTEConfig()); err == nil {
			t.Error("expected error with a single minority sample")
		}
	})
}
