// Package model loads atomic coordinates for scoring. Only positions and
// an optional selection matter to the engine; everything else a structural
// model carries stays with the tools that produced the file.
package model

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/banshee-data/qscore/internal/qscore"
)

// AtomRecord is one row of an atom coordinate CSV file. Coordinates are in
// the map frame, in ångströms.
type AtomRecord struct {
	Name    string  `csv:"name"`
	Element string  `csv:"element"`
	X       float64 `csv:"x"`
	Y       float64 `csv:"y"`
	Z       float64 `csv:"z"`
}

// ReadAtoms parses atom records from CSV. Row order defines atom identity
// for the whole run.
func ReadAtoms(r io.Reader) ([]AtomRecord, error) {
	var records []AtomRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("parse atom csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("atom csv contains no atoms")
	}
	return records, nil
}

// ReadAtomsFile reads atom records from a CSV file on disk.
func ReadAtomsFile(path string) ([]AtomRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open atom csv: %w", err)
	}
	defer f.Close()
	return ReadAtoms(f)
}

// Positions extracts the coordinate array in file order.
func Positions(records []AtomRecord) []qscore.Vec3 {
	out := make([]qscore.Vec3, len(records))
	for i, rec := range records {
		out[i] = qscore.Vec3{X: rec.X, Y: rec.Y, Z: rec.Z}
	}
	return out
}
