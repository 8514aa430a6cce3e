package db

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/tdee-service/internal/nutrition"
)

type seedProfile struct {
	userName string
	gender   nutrition.Gender
	age      int
	height   float64
	level    nutrition.ActivityLevel
	weights  []float64
}

var seedProfiles = []seedProfile{
	{"alice", nutrition.Female, 31, 165, nutrition.Light, []float64{68.2, 67.5, 66.9}},
	{"bob", nutrition.Male, 28, 169.5, nutrition.ModerateActive, []float64{86.5, 85.1, 84.0, 83.2}},
	{"carol", nutrition.Female, 45, 172, nutrition.Sedentary, []float64{74.0}},
	{"dave", nutrition.Male, 23, 181, nutrition.VeryActive, []float64{72.3, 73.8}},
}

// SeedTestData resets user_histories and fills it with demo entries.
//
// Every entry carries the macro reference computed from the profile's TDEE at
// that weight, so seeded rows look exactly like ones created through the API.
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB, log *slog.Logger) error {
	if err := db.Exec("DELETE FROM user_histories").Error; err != nil {
		return fmt.Errorf("failed to clear user_histories: %w", err)
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE user_histories AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'user_histories'")
	}
	log.Info("cleared existing history")

	count := 0
	for _, p := range seedProfiles {
		for _, w := range p.weights {
			row, err := seedRow(p, w)
			if err != nil {
				return err
			}
			if err := db.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to seed history for %s: %w", p.userName, err)
			}
			count++
		}
	}
	log.Info("seeded history", "rows", count, "users", len(seedProfiles))
	return nil
}

// SeedIfEmpty seeds only when user_histories has no rows, so stored history
// survives restarts. It reports whether anything was written.
func SeedIfEmpty(db *gorm.DB, log *slog.Logger) (bool, error) {
	var count int64
	if err := db.Model(&UserHistory{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count user_histories: %w", err)
	}
	if count > 0 {
		log.Info("history store not empty, skipping seed", "rows", count)
		return false, nil
	}
	if err := SeedTestData(db, log); err != nil {
		return false, err
	}
	return true, nil
}

func seedRow(p seedProfile, weight float64) (UserHistory, error) {
	tdee, err := nutrition.CalculateTDEE(nutrition.TdeeInput{
		Gender:        p.gender,
		Age:           p.age,
		WeightKg:      weight,
		HeightCm:      p.height,
		ActivityLevel: p.level,
	})
	if err != nil {
		return UserHistory{}, fmt.Errorf("seed tdee for %s: %w", p.userName, err)
	}
	macros, err := nutrition.EncodeBreakdown(nutrition.MacrosReference(tdee).Breakdown())
	if err != nil {
		return UserHistory{}, err
	}
	return UserHistory{
		UserName:      p.userName,
		Age:           p.age,
		Weight:        weight,
		Height:        p.height,
		ActivityLevel: string(p.level),
		Macros:        macros,
	}, nil
}
