package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/himanshu427-droid/touro-care/internal/domain"
)

type zoneFile struct {
	Zones []domain.RestrictedZone `yaml:"zones"`
}

// LoadZones reads the restricted-zone set from a YAML file. A missing file
// yields an empty set rather than an error so the core can run with
// geofencing effectively disabled.
func LoadZones(path string) ([]domain.RestrictedZone, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read zones file: %w", err)
	}

	var file zoneFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse zones file: %w", err)
	}

	for _, z := range file.Zones {
		if z.Name == "" {
			return nil, fmt.Errorf("zone without a name in %s", path)
		}
		if z.RadiusMeters <= 0 {
			return nil, fmt.Errorf("zone %q has non-positive radius", z.Name)
		}
	}

	return file.Zones, nil
}
