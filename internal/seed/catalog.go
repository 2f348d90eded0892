// Package seed provides the grimorio catalog and fake request data for
// development and tests.
package seed

import (
	"fmt"
	"os"

	"grimoire/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInGrimorio is one entry of the grimorio catalog.
type BuiltInGrimorio struct {
	TipoTrebol  int    `yaml:"tipo_trebol"`
	Ponderacion int    `yaml:"ponderacion"`
	Name        string `yaml:"name"`
}

// BuiltInGrimorios is the default catalog: five clover tiers whose weights sum to 100.
var BuiltInGrimorios = []BuiltInGrimorio{
	{TipoTrebol: 1, Ponderacion: 60, Name: "Grimorio de un trébol"},
	{TipoTrebol: 2, Ponderacion: 25, Name: "Grimorio de dos tréboles"},
	{TipoTrebol: 3, Ponderacion: 10, Name: "Grimorio de tres tréboles"},
	{TipoTrebol: 4, Ponderacion: 4, Name: "Grimorio de cuatro tréboles"},
	{TipoTrebol: 5, Ponderacion: 1, Name: "Grimorio de cinco tréboles"},
}

type catalogFile struct {
	Grimorios []BuiltInGrimorio `yaml:"grimorios"`
}

// DefaultCatalog returns the built-in catalog as models ready to insert.
func DefaultCatalog() []models.Grimorio {
	return toModels(BuiltInGrimorios)
}

// LoadCatalog reads a catalog from a YAML file of the form
//
//	grimorios:
//	  - {tipo_trebol: 1, ponderacion: 60, name: "Grimorio de un trébol"}
func LoadCatalog(path string) ([]models.Grimorio, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and checks a YAML catalog.
func ParseCatalog(raw []byte) ([]models.Grimorio, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validateCatalog(file.Grimorios); err != nil {
		return nil, err
	}
	return toModels(file.Grimorios), nil
}

func validateCatalog(entries []BuiltInGrimorio) error {
	if len(entries) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[int]bool, len(entries))
	total := 0
	for _, e := range entries {
		if seen[e.TipoTrebol] {
			return fmt.Errorf("duplicate tipo_trebol %d", e.TipoTrebol)
		}
		seen[e.TipoTrebol] = true
		if e.Ponderacion < 0 {
			return fmt.Errorf("tipo_trebol %d has negative ponderacion %d", e.TipoTrebol, e.Ponderacion)
		}
		if e.Name == "" {
			return fmt.Errorf("tipo_trebol %d has no name", e.TipoTrebol)
		}
		total += e.Ponderacion
	}
	if total == 0 {
		return fmt.Errorf("catalog total ponderacion is zero")
	}
	return nil
}

func toModels(entries []BuiltInGrimorio) []models.Grimorio {
	out := make([]models.Grimorio, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.Grimorio{
			TipoTrebol:  e.TipoTrebol,
			Ponderacion: e.Ponderacion,
			Name:        e.Name,
		})
	}
	return out
}

// Grimorios upserts catalog by tipo_trebol, updating names and weights of
// existing tiers. Unlike the fixtures endpoint it reconciles an existing table.
func Grimorios(db *gorm.DB, catalog []models.Grimorio) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, g := range catalog {
			row := g
			if err := tx.Omit("Requests").Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tipo_trebol"}},
				DoUpdates: clause.AssignmentColumns([]string{"ponderacion", "name"}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("upsert grimorio tier %d: %w", g.TipoTrebol, err)
			}
		}
		return nil
	})
}
