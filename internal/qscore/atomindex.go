package qscore

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// atomPoint is one atom position in the k-d tree, tagged with its index in
// the source atom array so query results can be mapped back to identities.
type atomPoint struct {
	Vec3
	idx int
}

// Compare implements kdtree.Comparable.
func (p atomPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(atomPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

// Dims implements kdtree.Comparable.
func (p atomPoint) Dims() int { return 3 }

// Distance implements kdtree.Comparable. It returns the squared Euclidean
// distance; all tree queries therefore work in squared units.
func (p atomPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(atomPoint)
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return dx*dx + dy*dy + dz*dz
}

// atomPoints satisfies kdtree.Interface.
type atomPoints []atomPoint

func (p atomPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p atomPoints) Len() int                              { return len(p) }
func (p atomPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p atomPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(atomPlane{atomPoints: p, Dim: d}, kdtree.MedianOfRandoms(atomPlane{atomPoints: p, Dim: d}, 100))
}

// atomPlane implements sort.Interface and kdtree.SortSlicer for atomPoints.
type atomPlane struct {
	atomPoints
	kdtree.Dim
}

func (p atomPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.atomPoints[i].X < p.atomPoints[j].X
	case 1:
		return p.atomPoints[i].Y < p.atomPoints[j].Y
	case 2:
		return p.atomPoints[i].Z < p.atomPoints[j].Z
	default:
		panic("illegal dimension")
	}
}

func (p atomPlane) Slice(start, end int) kdtree.SortSlicer {
	return atomPlane{atomPoints: p.atomPoints[start:end], Dim: p.Dim}
}

func (p atomPlane) Swap(i, j int) {
	p.atomPoints[i], p.atomPoints[j] = p.atomPoints[j], p.atomPoints[i]
}

// AtomIndex is a read-only spatial index over the full atom array. Queries
// do not mutate the tree, so one index is safely shared by all workers.
type AtomIndex struct {
	tree *kdtree.Tree
	n    int
}

// NewAtomIndex builds the index from atom positions. Index i in atoms is
// atom i's identity in all query results.
func NewAtomIndex(atoms []Vec3) *AtomIndex {
	pts := make(atomPoints, len(atoms))
	for i, a := range atoms {
		pts[i] = atomPoint{Vec3: a, idx: i}
	}
	return &AtomIndex{tree: kdtree.New(pts, true), n: len(atoms)}
}

// Len returns the number of indexed atoms.
func (ix *AtomIndex) Len() int { return ix.n }

// WithinRadius returns the indices of all atoms within Euclidean distance r
// of p. Order is unspecified.
func (ix *AtomIndex) WithinRadius(p Vec3, r float64) []int {
	keeper := kdtree.NewDistKeeper(r * r)
	ix.tree.NearestSet(keeper, atomPoint{Vec3: p, idx: -1})

	var out []int
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			continue // the keeper's bound sentinel
		}
		out = append(out, c.Comparable.(atomPoint).idx)
	}
	return out
}

// Nearest2 returns the two nearest atom indices to p and their Euclidean
// distances, closest first. With fewer than two atoms indexed the missing
// slot holds index -1 and distance +Inf.
func (ix *AtomIndex) Nearest2(p Vec3) ([2]int, [2]float64) {
	idx := [2]int{-1, -1}
	dist := [2]float64{math.Inf(1), math.Inf(1)}

	keeper := kdtree.NewNKeeper(2)
	ix.tree.NearestSet(keeper, atomPoint{Vec3: p, idx: -1})

	// The keeper's heap is furthest-first and may still hold its +Inf
	// sentinel when fewer than two atoms exist.
	found := make([]kdtree.ComparableDist, 0, 2)
	for _, c := range keeper.Heap {
		if c.Comparable != nil {
			found = append(found, c)
		}
	}
	if len(found) == 2 && found[0].Dist < found[1].Dist {
		found[0], found[1] = found[1], found[0]
	}
	// found is now furthest-first; fill closest-first.
	for i, c := range found {
		slot := len(found) - 1 - i
		idx[slot] = c.Comparable.(atomPoint).idx
		dist[slot] = math.Sqrt(c.Dist)
	}
	return idx, dist
}
