package qscore

import "math"

// cageRadius is the shell radius at which the caged atom below is fully
// occluded.
const cageRadius = 1.5

// cagedAtomFixture returns an atom at the origin surrounded by 14 atoms
// (face and corner directions of a cube) at distance cageRadius. The cage
// covers the origin atom's shell of radius cageRadius: the widest angular
// gap between cage directions leaves every shell point within ~1.15 of a
// cage atom, inside the 0.9*cageRadius = 1.35 occlusion radius. Every
// probe the origin atom generates on that shell is therefore rejected by
// both occlusion strategies.
func cagedAtomFixture() []Vec3 {
	dirs := [][3]float64{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	c := 1.0 / math.Sqrt(3)
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				dirs = append(dirs, [3]float64{sx * c, sy * c, sz * c})
			}
		}
	}

	atoms := []Vec3{{X: 0, Y: 0, Z: 0}}
	for _, d := range dirs {
		atoms = append(atoms, Vec3{
			X: d[0] * cageRadius,
			Y: d[1] * cageRadius,
			Z: d[2] * cageRadius,
		})
	}
	return atoms
}
