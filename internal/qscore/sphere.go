package qscore

import "math"

// spherePoints places n near-uniform points on the sphere of radius r
// centred at c, using the deterministic spiral construction from mapq.
//
// Index k in 0..n-1 maps to height h = -1 + 2k/(n-1) and polar angle
// acos(h); the azimuth accumulates 3.6/sqrt(n*(1-h^2)) per interior point,
// reduced mod 2π, and is pinned to zero at both poles. The same
// (c, r, n) always yields bit-identical output.
func spherePoints(c Vec3, r float64, n int) []Vec3 {
	if n < 2 {
		panic("spherePoints: need at least 2 points")
	}
	pts := make([]Vec3, n)
	theta := 0.0
	for k := 0; k < n; k++ {
		h := -1.0 + 2.0*float64(k)/float64(n-1)
		phi := math.Acos(h)
		if k == 0 || k == n-1 {
			theta = 0
		} else {
			theta = math.Mod(theta+3.6/math.Sqrt(float64(n)*(1.0-h*h)), 2*math.Pi)
		}
		sinPhi := math.Sin(phi)
		pts[k] = Vec3{
			X: c.X + r*sinPhi*math.Cos(theta),
			Y: c.Y + r*sinPhi*math.Sin(theta),
			Z: c.Z + r*h,
		}
	}
	return pts
}
