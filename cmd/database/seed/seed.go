package seed

import (
	"CookShare-Backend/entities"
	"CookShare-Backend/internal/utils/logging"
	"CookShare-Backend/pkg/catalog"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	ingredientRecord struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	tagRecord struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
)

// LoadReferenceData bulk-imports ingredients and tags from JSON files.
// Rows already present are skipped, so re-running the import on the same
// files is a no-op.
func LoadReferenceData(ctx context.Context, db *gorm.DB, ingredientsPath, tagsPath string) error {
	repository := catalog.NewCatalogRepository(db)

	if ingredientsPath != "" {
		records, err := readJSON[ingredientRecord](ingredientsPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", ingredientsPath, err)
		}
		ingredients := make([]*entities.Ingredient, 0, len(records))
		for _, record := range records {
			ingredients = append(ingredients, &entities.Ingredient{
				Name:            record.Name,
				MeasurementUnit: record.MeasurementUnit,
			})
		}
		imported, err := repository.ImportIngredients(ctx, ingredients)
		if err != nil {
			return fmt.Errorf("importing ingredients: %w", err)
		}
		logging.GetLogger().Info("imported ingredients",
			zap.Int64("imported", imported),
			zap.Int("total", len(ingredients)),
		)
	}

	if tagsPath != "" {
		records, err := readJSON[tagRecord](tagsPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", tagsPath, err)
		}
		tags := make([]*entities.Tag, 0, len(records))
		for _, record := range records {
			if err := catalog.ValidateSlug(record.Slug); err != nil {
				return fmt.Errorf("tag %q: %w", record.Name, err)
			}
			tags = append(tags, &entities.Tag{
				Name: record.Name,
				Slug: record.Slug,
			})
		}
		imported, err := repository.ImportTags(ctx, tags)
		if err != nil {
			return fmt.Errorf("importing tags: %w", err)
		}
		logging.GetLogger().Info("imported tags",
			zap.Int64("imported", imported),
			zap.Int("total", len(tags)),
		)
	}

	return nil
}

func readJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
