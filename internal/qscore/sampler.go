package qscore

import (
	"fmt"
	"math"
)

// DensityField is a regular 3D scalar grid with per-axis voxel size and an
// optional coordinate origin offset. It is read-only for the duration of a
// run and safe for concurrent sampling.
//
// Data is laid out X-major: the value at voxel (ix, iy, iz) lives at
// Data[(ix*NY+iy)*NZ+iz].
type DensityField struct {
	Data       []float64
	NX, NY, NZ int
	VoxelSize  Vec3
	Origin     Vec3
}

// NewDensityField wraps a flat grid, validating the dimensions.
func NewDensityField(data []float64, nx, ny, nz int, voxelSize, origin Vec3) (*DensityField, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("density field dimensions must be positive, got (%d,%d,%d)", nx, ny, nz)
	}
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("density field data length %d does not match dimensions (%d,%d,%d)", len(data), nx, ny, nz)
	}
	if voxelSize.X <= 0 || voxelSize.Y <= 0 || voxelSize.Z <= 0 {
		return nil, fmt.Errorf("voxel size must be positive on every axis, got (%g,%g,%g)", voxelSize.X, voxelSize.Y, voxelSize.Z)
	}
	return &DensityField{Data: data, NX: nx, NY: ny, NZ: nz, VoxelSize: voxelSize, Origin: origin}, nil
}

// At returns the grid value at integer voxel indices.
func (f *DensityField) At(ix, iy, iz int) float64 {
	return f.Data[(ix*f.NY+iy)*f.NZ+iz]
}

// Interpolate evaluates the field at a continuous map coordinate by
// trilinear blending of the 8 surrounding voxels. Coordinates beyond the
// grid clamp to the nearest valid voxel; there is no extrapolation.
func (f *DensityField) Interpolate(p Vec3) float64 {
	x := (p.X - f.Origin.X) / f.VoxelSize.X
	y := (p.Y - f.Origin.Y) / f.VoxelSize.Y
	z := (p.Z - f.Origin.Z) / f.VoxelSize.Z

	x0 := clampInt(int(math.Floor(x)), 0, f.NX-1)
	y0 := clampInt(int(math.Floor(y)), 0, f.NY-1)
	z0 := clampInt(int(math.Floor(z)), 0, f.NZ-1)
	x1 := clampInt(int(math.Ceil(x)), 0, f.NX-1)
	y1 := clampInt(int(math.Ceil(y)), 0, f.NY-1)
	z1 := clampInt(int(math.Ceil(z)), 0, f.NZ-1)

	xd := x - math.Floor(x)
	yd := y - math.Floor(y)
	zd := z - math.Floor(z)

	c00 := f.At(x0, y0, z0)*(1-xd) + f.At(x1, y0, z0)*xd
	c01 := f.At(x0, y0, z1)*(1-xd) + f.At(x1, y0, z1)*xd
	c10 := f.At(x0, y1, z0)*(1-xd) + f.At(x1, y1, z0)*xd
	c11 := f.At(x0, y1, z1)*(1-xd) + f.At(x1, y1, z1)*xd

	c0 := c00*(1-yd) + c10*yd
	c1 := c01*(1-yd) + c11*yd

	return c0*(1-zd) + c1*zd
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// interpolateBatch samples the field at every valid probe in the batch.
// The returned slice shares the batch's indexing; invalid slots hold NaN.
func interpolateBatch(f *DensityField, batch *ProbeBatch) []float64 {
	out := make([]float64, len(batch.XYZ))
	for i := range out {
		if batch.Valid[i] {
			out[i] = f.Interpolate(batch.XYZ[i])
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
