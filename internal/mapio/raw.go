package mapio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/qscore/internal/qscore"
)

// ReadRaw reads a headerless little-endian float32 volume in X-major
// order. Dimensions, voxel size and origin are not stored in the file and
// must be supplied by the caller.
func ReadRaw(r io.Reader, nx, ny, nz int, voxel, origin qscore.Vec3) (*qscore.DensityField, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("invalid raw volume dimensions (%d,%d,%d)", nx, ny, nz)
	}
	raw := make([]float32, nx*ny*nz)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("read raw voxels: %w", err)
	}
	data := make([]float64, len(raw))
	for i, v := range raw {
		data[i] = float64(v)
	}
	return qscore.NewDensityField(data, nx, ny, nz, voxel, origin)
}

// ReadRawFile reads a headerless volume from disk.
func ReadRawFile(path string, nx, ny, nz int, voxel, origin qscore.Vec3) (*qscore.DensityField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw volume: %w", err)
	}
	defer f.Close()
	return ReadRaw(f, nx, ny, nz, voxel, origin)
}

// WriteRaw writes the field's voxels as little-endian float32 in X-major
// order.
func WriteRaw(w io.Writer, field *qscore.DensityField) error {
	raw := make([]float32, len(field.Data))
	for i, v := range field.Data {
		raw[i] = float32(v)
	}
	if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
		return fmt.Errorf("write raw voxels: %w", err)
	}
	return nil
}
