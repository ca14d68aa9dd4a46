package qscore

import (
	"math"
	"sort"
	"testing"
)

var indexFixture = []Vec3{
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 2, Z: 0},
	{X: 0, Y: 0, Z: 3},
	{X: 5, Y: 5, Z: 5},
	{X: 1.1, Y: 0.1, Z: -0.1},
}

// bruteWithinRadius is the reference implementation the tree is checked
// against.
func bruteWithinRadius(atoms []Vec3, p Vec3, r float64) []int {
	var out []int
	for i, a := range atoms {
		if a.Sub(p).Norm() <= r {
			out = append(out, i)
		}
	}
	return out
}

func TestAtomIndex_WithinRadius(t *testing.T) {
	ix := NewAtomIndex(indexFixture)
	queries := []struct {
		p Vec3
		r float64
	}{
		{Vec3{X: 0, Y: 0, Z: 0}, 0.5},
		{Vec3{X: 0, Y: 0, Z: 0}, 1.5},
		{Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 2.0},
		{Vec3{X: 10, Y: 10, Z: 10}, 1.0},
		{Vec3{X: 0, Y: 0, Z: 0}, 100.0},
	}
	for _, q := range queries {
		got := ix.WithinRadius(q.p, q.r)
		want := bruteWithinRadius(indexFixture, q.p, q.r)
		sort.Ints(got)
		if len(got) != len(want) {
			t.Errorf("query %v r=%f: got %v, want %v", q.p, q.r, got, want)
			continue
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("query %v r=%f: got %v, want %v", q.p, q.r, got, want)
				break
			}
		}
	}
}

func TestAtomIndex_Nearest2(t *testing.T) {
	ix := NewAtomIndex(indexFixture)

	idx, dist := ix.Nearest2(Vec3{X: 0.1, Y: 0, Z: 0})
	if idx[0] != 0 {
		t.Errorf("nearest atom = %d, want 0", idx[0])
	}
	if idx[1] != 1 {
		t.Errorf("second nearest atom = %d, want 1", idx[1])
	}
	if math.Abs(dist[0]-0.1) > 1e-12 {
		t.Errorf("nearest distance = %f, want 0.1", dist[0])
	}
	if math.Abs(dist[1]-0.9) > 1e-12 {
		t.Errorf("second distance = %f, want 0.9", dist[1])
	}
	if dist[0] > dist[1] {
		t.Errorf("distances out of order: %v", dist)
	}
}

func TestAtomIndex_Nearest2_SingleAtom(t *testing.T) {
	ix := NewAtomIndex([]Vec3{{X: 1, Y: 2, Z: 3}})

	idx, dist := ix.Nearest2(Vec3{X: 1, Y: 2, Z: 4})
	if idx[0] != 0 {
		t.Errorf("nearest atom = %d, want 0", idx[0])
	}
	if idx[1] != -1 {
		t.Errorf("second slot = %d, want -1", idx[1])
	}
	if math.Abs(dist[0]-1.0) > 1e-12 {
		t.Errorf("nearest distance = %f, want 1.0", dist[0])
	}
	if !math.IsInf(dist[1], 1) {
		t.Errorf("second distance = %f, want +Inf", dist[1])
	}
}

func TestAtomIndex_ConcurrentQueries(t *testing.T) {
	ix := NewAtomIndex(indexFixture)
	done := make(chan struct{})
	for w := 0; w < 8; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				ix.WithinRadius(Vec3{X: float64(i % 5), Y: 0, Z: 0}, 1.5)
				ix.Nearest2(Vec3{X: 0, Y: float64(i % 3), Z: 0})
			}
		}()
	}
	for w := 0; w < 8; w++ {
		<-done
	}
}
