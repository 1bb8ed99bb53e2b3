// Package schema loads the study's data-layout definition: sheet and column
// names, substance lists, contributing areas, and sentinel strings. All of
// these live in one YAML document instead of literals scattered through the
// parsing code, so a renamed spreadsheet column or an encoding mismatch
// fails once, at load time.
package schema

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tbergdoll/runoff-loads/internal/domain"
)

//go:embed schema.yaml
var defaultSchema []byte

// Schema is the full layout definition for both sites.
type Schema struct {
	// OverRangeSentinel is the literal string loggers write when the
	// measurement range was exceeded; it maps to missing.
	OverRangeSentinel string `yaml:"over_range_sentinel"`

	// Substances lists the concentration column names per monitoring-point
	// type, in output order.
	Substances map[string][]string `yaml:"substances"`

	// EventColumns maps logical event fields to spreadsheet header names.
	EventColumns map[string]string `yaml:"event_columns"`

	// FacadeSideColumns maps a side code to its volume and bottle headers.
	FacadeSideColumns map[string]SideColumns `yaml:"facade_side_columns"`

	Sites map[string]SiteDef `yaml:"sites"`
}

// SideColumns names the per-side volume and bottle-list headers of the
// facade event sheet.
type SideColumns struct {
	Volume  string `yaml:"volume"`
	Bottles string `yaml:"bottles"`
}

// SiteDef holds one site's areas and workbook layout.
type SiteDef struct {
	RoofAreaM2    float64            `yaml:"roof_area_m2"`
	SewerAreaM2   float64            `yaml:"sewer_area_m2"`
	FacadeAreasM2 map[string]float64 `yaml:"facade_areas_m2"`
	Workbook      WorkbookDef        `yaml:"workbook"`
}

// WorkbookDef names the sheets of one site's event/concentration workbook.
type WorkbookDef struct {
	FacadeSheet string            `yaml:"facade_sheet"`
	RoofSheet   string            `yaml:"roof_sheet"`
	SewerSheet  string            `yaml:"sewer_sheet"`
	Concs       map[string]string `yaml:"concentration_sheets"` // point type -> sheet
}

// Load reads a schema file, or the embedded default when path is empty, and
// validates it.
func Load(path string) (*Schema, error) {
	data := defaultSchema
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
	}

	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &s, nil
}

// requiredEventColumns are the logical fields every event sheet must map.
var requiredEventColumns = []string{
	"event_start", "rain_mm", "gauge",
}

func (s *Schema) validate() error {
	for _, pt := range []domain.PointType{domain.PointFacade, domain.PointRoof, domain.PointSewer} {
		if len(s.Substances[string(pt)]) == 0 {
			return fmt.Errorf("no substances for point type %q", pt)
		}
	}
	for _, col := range requiredEventColumns {
		if s.EventColumns[col] == "" {
			return fmt.Errorf("event column %q not mapped", col)
		}
	}
	if len(s.FacadeSideColumns) == 0 {
		return fmt.Errorf("no facade side columns")
	}
	for side, cols := range s.FacadeSideColumns {
		if _, err := parseSide(side); err != nil {
			return err
		}
		if cols.Volume == "" || cols.Bottles == "" {
			return fmt.Errorf("incomplete columns for facade side %q", side)
		}
	}

	for _, code := range []domain.Site{domain.SiteA, domain.SiteB} {
		def, ok := s.Sites[string(code)]
		if !ok {
			return fmt.Errorf("site %s not defined", code)
		}
		if def.RoofAreaM2 <= 0 || def.SewerAreaM2 <= 0 {
			return fmt.Errorf("site %s: roof and sewer areas must be positive", code)
		}
		if len(def.FacadeAreasM2) == 0 {
			return fmt.Errorf("site %s: no facade areas", code)
		}
		for side, area := range def.FacadeAreasM2 {
			if _, err := parseSide(side); err != nil {
				return fmt.Errorf("site %s: %w", code, err)
			}
			if area <= 0 {
				return fmt.Errorf("site %s: facade area for side %s must be positive", code, side)
			}
		}
	}
	return nil
}

func parseSide(s string) (domain.Side, error) {
	switch domain.Side(s) {
	case domain.SideNorth, domain.SideEast, domain.SideSouth, domain.SideWest:
		return domain.Side(s), nil
	default:
		return "", fmt.Errorf("unknown facade side %q", s)
	}
}

// Areas returns the contributing areas of a site as domain values.
func (s *Schema) Areas(site domain.Site) (domain.SiteAreas, error) {
	def, ok := s.Sites[string(site)]
	if !ok {
		return domain.SiteAreas{}, fmt.Errorf("site %s not defined in schema", site)
	}
	facade := make(map[domain.Side]float64, len(def.FacadeAreasM2))
	for side, area := range def.FacadeAreasM2 {
		facade[domain.Side(side)] = area
	}
	return domain.SiteAreas{
		Roof:   def.RoofAreaM2,
		Sewer:  def.SewerAreaM2,
		Facade: facade,
	}, nil
}

// SubstancesFor returns the substance column list for a point type.
func (s *Schema) SubstancesFor(point domain.PointType) []string {
	return s.Substances[string(point)]
}

// Site returns the raw definition of a site.
func (s *Schema) Site(site domain.Site) (SiteDef, error) {
	def, ok := s.Sites[string(site)]
	if !ok {
		return SiteDef{}, fmt.Errorf("site %s not defined in schema", site)
	}
	return def, nil
}
