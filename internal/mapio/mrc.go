// Package mapio reads and writes density maps for the scoring engine. It
// understands the common case of MRC/CCP4 maps (mode 2, axes in column =
// X, row = Y, section = Z order) plus a headerless raw float32 volume
// format used for fixtures and intermediate files.
package mapio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/qscore/internal/qscore"
)

// mrcModeFloat32 is the only voxel mode this reader accepts.
const mrcModeFloat32 = 2

// mrcHeader is the fixed 1024-byte MRC2014 header, minus the label block.
// Field names follow the format specification.
type mrcHeader struct {
	NX, NY, NZ        int32 // columns, rows, sections
	Mode              int32
	NXStart           int32
	NYStart           int32
	NZStart           int32
	MX, MY, MZ        int32      // sampling along each cell axis
	CellA             [3]float32 // cell dimensions (ångströms)
	CellB             [3]float32 // cell angles (degrees)
	MapC, MapR, MapS  int32      // axis order; only 1,2,3 supported
	DMin, DMax, DMean float32
	ISPG              int32
	NSymBT            int32 // bytes of symmetry data to skip
	Extra             [100]byte
	Origin            [3]float32
	Map               [4]byte // "MAP "
	MachSt            [4]byte
	RMS               float32
	NLabl             int32
	Labels            [800]byte
}

// ReadMRC parses an MRC/CCP4 map into a density field. The grid is
// re-ordered from the file's section-major layout into the field's
// X-major layout; voxel size comes from the cell dimensions over the
// sampling counts, and the coordinate origin from the ORIGIN record,
// falling back to the start offsets for older CCP4-style files.
func ReadMRC(r io.Reader) (*qscore.DensityField, error) {
	var h mrcHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read mrc header: %w", err)
	}
	if h.Mode != mrcModeFloat32 {
		return nil, fmt.Errorf("unsupported mrc mode %d, only mode 2 (float32) is handled", h.Mode)
	}
	if h.NX < 1 || h.NY < 1 || h.NZ < 1 {
		return nil, fmt.Errorf("invalid mrc dimensions (%d,%d,%d)", h.NX, h.NY, h.NZ)
	}
	if h.MapC != 1 || h.MapR != 2 || h.MapS != 3 {
		return nil, fmt.Errorf("unsupported mrc axis order (%d,%d,%d), only (1,2,3) is handled", h.MapC, h.MapR, h.MapS)
	}
	if h.MX < 1 || h.MY < 1 || h.MZ < 1 {
		return nil, fmt.Errorf("invalid mrc sampling (%d,%d,%d)", h.MX, h.MY, h.MZ)
	}
	if h.NSymBT > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(h.NSymBT)); err != nil {
			return nil, fmt.Errorf("skip mrc symmetry block: %w", err)
		}
	}

	nx, ny, nz := int(h.NX), int(h.NY), int(h.NZ)
	raw := make([]float32, nx*ny*nz)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("read mrc voxels: %w", err)
	}

	voxel := qscore.Vec3{
		X: float64(h.CellA[0]) / float64(h.MX),
		Y: float64(h.CellA[1]) / float64(h.MY),
		Z: float64(h.CellA[2]) / float64(h.MZ),
	}
	origin := qscore.Vec3{
		X: float64(h.Origin[0]),
		Y: float64(h.Origin[1]),
		Z: float64(h.Origin[2]),
	}
	if origin == (qscore.Vec3{}) {
		origin = qscore.Vec3{
			X: float64(h.NXStart) * voxel.X,
			Y: float64(h.NYStart) * voxel.Y,
			Z: float64(h.NZStart) * voxel.Z,
		}
	}

	// File order is column-fastest (x fastest, z slowest); the field
	// wants X-major.
	data := make([]float64, nx*ny*nz)
	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				data[(ix*ny+iy)*nz+iz] = float64(raw[(iz*ny+iy)*nx+ix])
			}
		}
	}
	return qscore.NewDensityField(data, nx, ny, nz, voxel, origin)
}

// ReadMRCFile reads a map from disk.
func ReadMRCFile(path string) (*qscore.DensityField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()
	return ReadMRC(f)
}

// WriteMRC serialises a density field as a minimal mode-2 MRC map. The
// cell is sized so the voxel spacing round-trips, and the explicit origin
// record carries the field's offset.
func WriteMRC(w io.Writer, field *qscore.DensityField) error {
	h := mrcHeader{
		NX:     int32(field.NX),
		NY:     int32(field.NY),
		NZ:     int32(field.NZ),
		Mode:   mrcModeFloat32,
		MX:     int32(field.NX),
		MY:     int32(field.NY),
		MZ:     int32(field.NZ),
		MapC:   1,
		MapR:   2,
		MapS:   3,
		Map:    [4]byte{'M', 'A', 'P', ' '},
		MachSt: [4]byte{0x44, 0x44, 0x00, 0x00},
	}
	h.CellA = [3]float32{
		float32(field.VoxelSize.X * float64(field.NX)),
		float32(field.VoxelSize.Y * float64(field.NY)),
		float32(field.VoxelSize.Z * float64(field.NZ)),
	}
	h.CellB = [3]float32{90, 90, 90}
	h.Origin = [3]float32{
		float32(field.Origin.X),
		float32(field.Origin.Y),
		float32(field.Origin.Z),
	}

	min, max, mean := fieldStats(field.Data)
	h.DMin, h.DMax, h.DMean = float32(min), float32(max), float32(mean)

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("write mrc header: %w", err)
	}
	raw := make([]float32, len(field.Data))
	for iz := 0; iz < field.NZ; iz++ {
		for iy := 0; iy < field.NY; iy++ {
			for ix := 0; ix < field.NX; ix++ {
				raw[(iz*field.NY+iy)*field.NX+ix] = float32(field.At(ix, iy, iz))
			}
		}
	}
	if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
		return fmt.Errorf("write mrc voxels: %w", err)
	}
	return nil
}

// WriteMRCFile writes a map to disk.
func WriteMRCFile(path string, field *qscore.DensityField) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create map: %w", err)
	}
	if err := WriteMRC(f, field); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fieldStats(data []float64) (min, max, mean float64) {
	min, max = data[0], data[0]
	sum := 0.0
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, sum / float64(len(data))
}
