package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
)

type stubBackend struct {
	rows    [][]float32
	err     error
	initErr error
	dims    int
}

func (s *stubBackend) EmbedTokens(context.Context, string) ([][]float32, error) {
	return s.rows, s.err
}
func (s *stubBackend) ModelName() string { return "stub" }
func (s *stubBackend) Dimensions() int { return s.dims }
func (s *stubBackend) Init(context.Context) error { return s.initErr }

func TestEmbed_UnavailableBeforeInit(t *testing.T) {
	svc := NewService(&stubBackend{rows: [][]float32{{1, 0}}, dims: 2})
	if svc.Ready() {
		t.Fatal("service should not be ready before Init")
	}
	if _, err := svc.Embed(context.Background(), "hello"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Embed error = %v, want ErrUnavailable", err)
	}
}

func TestInit_BackendFailureKeepsServiceUnavailable(t *testing.T) {
	svc := NewService(&stubBackend{dims: 2, initErr: errors.New("no model")})
	if err := svc.Init(context.Background()); err == nil {
		t.Fatal("expected Init error")
	}
	if svc.Ready() {
		t.Error("service must stay unavailable after failed Init")
	}
}

func TestEmbed_PoolsAndNormalizes(t *testing.T) {
	svc := NewService(&stubBackend{rows: [][]float32{{3, 0}, {3, 8}}, dims: 2})
	if err := svc.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	v, err := svc.Embed(context.Background(), "two tokens")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	// mean is (3, 4), normalized (0.6, 0.8)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("Embed = %v, want [0.6 0.8]", v)
	}
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	svc := NewService(&stubBackend{rows: [][]float32{{1, 2, 3}}, dims: 2})
	_ = svc.Init(context.Background())
	if _, err := svc.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestMeanPool(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]float32
		want    []float32
		wantErr bool
	}{
		{name: "single row", rows: [][]float32{{1, 2}}, want: []float32{1, 2}},
		{name: "average", rows: [][]float32{{0, 2}, {2, 4}}, want: []float32{1, 3}},
		{name: "empty", rows: nil, wantErr: true},
		{name: "ragged", rows: [][]float32{{1, 2}, {1}}, wantErr: true},
		{name: "nan", rows: [][]float32{{float32(math.NaN()), 1}}, wantErr: true},
		{name: "inf", rows: [][]float32{{float32(math.Inf(1)), 1}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MeanPool(tt.rows)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("MeanPool failed: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("MeanPool = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	Normalize(v)
	for _, x := range v {
		if x != 0 {
			t.Fatalf("zero vector changed: %v", v)
		}
	}
}
