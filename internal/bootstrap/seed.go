package bootstrap

import (
	_ "embed"
	"fmt"
	"log"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"paceline.app/community/internal/entity"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the reference data the pipeline reads but never writes.
type Catalog struct {
	DistanceCategories []entity.DistanceCategory      `yaml:"distance_categories"`
	Achievements       []entity.AchievementDefinition `yaml:"achievements"`
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Run{},
		&entity.DistanceCategory{},
		&entity.PersonalBest{},
		&entity.UserStreak{},
		&entity.AchievementDefinition{},
		&entity.UserAchievement{},
		&entity.Challenge{},
		&entity.ChallengeParticipation{},
		&entity.Event{},
		&entity.EventRegistration{},
		&entity.Shoe{},
		&entity.ActivityLog{},
	)
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.DistanceCategories) == 0 || len(c.Achievements) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return &c, nil
}

// SeedCatalog upserts distance categories and achievement definitions by
// identifier, so edits to catalog.yaml take effect on the next start.
func SeedCatalog(db *gorm.DB) error {
	c, err := LoadCatalog()
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			UpdateAll: true,
		}).Create(&c.DistanceCategories).Error; err != nil {
			return fmt.Errorf("seed distance categories: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&c.Achievements).Error; err != nil {
			return fmt.Errorf("seed achievements: %w", err)
		}

		log.Printf("✅ Catalog seeded: %d distance categories, %d achievements",
			len(c.DistanceCategories), len(c.Achievements))
		return nil
	})
}
