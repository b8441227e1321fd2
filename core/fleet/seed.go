package fleet

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/medfleet/core/model"
)

// SeedFile is the on-disk layout of a custom fleet seed.
type SeedFile struct {
	Ambulances []model.Ambulance `json:"ambulances" yaml:"ambulances"`
	Hospitals  []model.Hospital  `json:"hospitals" yaml:"hospitals"`
}

// LoadSeed reads a seed file in YAML or JSON format.
func LoadSeed(path string) (SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeedFile{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeSeed(f, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// DecodeSeed decodes a seed from r. Missing hospitals fall back to the defaults.
func DecodeSeed(r io.Reader, format string) (SeedFile, error) {
	var seed SeedFile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
			return seed, fmt.Errorf("decode seed: %w", err)
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&seed); err != nil {
			return seed, fmt.Errorf("decode seed: %w", err)
		}
	default:
		return seed, fmt.Errorf("unsupported seed format: %s", format)
	}
	if len(seed.Ambulances) == 0 {
		return seed, fmt.Errorf("seed contains no ambulances")
	}
	if len(seed.Hospitals) == 0 {
		seed.Hospitals = model.SeedHospitals()
	}
	return seed, nil
}
