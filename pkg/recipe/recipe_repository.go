package recipe

import (
	"CookShare-Backend/domain"
	"CookShare-Backend/entities"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RecipeRepository interface {
		CreateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tagIDs []uuid.UUID) error
		UpdateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tagIDs []uuid.UUID) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipeByShortCode(ctx context.Context, code string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, callerID string, page, limit int) ([]*entities.Recipe, int64, error)
		DeleteRecipe(ctx context.Context, id string) error

		AddMembership(ctx context.Context, kind domain.MembershipKind, userID, recipeID uuid.UUID) (bool, error)
		RemoveMembership(ctx context.Context, kind domain.MembershipKind, userID, recipeID uuid.UUID) (bool, error)
		HasMembership(ctx context.Context, kind domain.MembershipKind, userID, recipeID string) (bool, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// CreateRecipeWithAssociations persists the recipe row, its ingredient
// rows and its tag links in one transaction. Either everything is created
// or nothing is.
func (r *recipeRepository) CreateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return replaceAssociations(tx, recipe, ingredients, tagIDs)
	})
}

// UpdateRecipeWithAssociations saves the recipe's scalar fields and, when
// ingredients or tagIDs are non-nil, substitutes the corresponding
// association set in full. Nil means leave that set untouched.
func (r *recipeRepository) UpdateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}
		if ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).
				Delete(&entities.RecipeIngredient{}).Error; err != nil {
				return err
			}
		}
		if tagIDs == nil {
			if ingredients == nil {
				return nil
			}
			for i := range ingredients {
				ingredients[i].RecipeID = recipe.ID
			}
			return tx.Create(&ingredients).Error
		}
		return replaceAssociations(tx, recipe, ingredients, tagIDs)
	})
}

func replaceAssociations(tx *gorm.DB, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	if ingredients != nil {
		for i := range ingredients {
			ingredients[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&ingredients).Error; err != nil {
			return err
		}
	}
	if tagIDs != nil {
		tags := make([]*entities.Tag, 0, len(tagIDs))
		for _, id := range tagIDs {
			tags = append(tags, &entities.Tag{ID: id})
		}
		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
	}
	return nil
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position asc")
		}).
		Preload("RecipeIngredients.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipeByShortCode(ctx context.Context, code string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Where("short_code = ?", code).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, callerID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs).
			Distinct("recipes.*")
	}
	if filter.OnlyFavorited && callerID != "" {
		query = query.
			Joins("JOIN favourites ON favourites.recipe_id = recipes.id").
			Where("favourites.user_id = ?", callerID)
	}
	if filter.OnlyInCart && callerID != "" {
		query = query.
			Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
			Where("shopping_carts.user_id = ?", callerID)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Author").
		Preload("Tags").
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position asc")
		}).
		Preload("RecipeIngredients.Ingredient").
		Order("recipes.created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favourite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Recipe{}, "id = ?", id).Error
	})
}

// AddMembership inserts a membership row for the given kind. The unique
// index is the backstop for concurrent duplicate adds: the losing insert
// reports created=false instead of a constraint violation.
func (r *recipeRepository) AddMembership(ctx context.Context, kind domain.MembershipKind, userID, recipeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})

	var result *gorm.DB
	switch kind {
	case domain.MembershipFavourite:
		result = query.Create(&entities.Favourite{ID: uuid.New(), UserID: userID, RecipeID: recipeID})
	default:
		result = query.Create(&entities.ShoppingCart{ID: uuid.New(), UserID: userID, RecipeID: recipeID})
	}
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *recipeRepository) RemoveMembership(ctx context.Context, kind domain.MembershipKind, userID, recipeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID)

	var result *gorm.DB
	switch kind {
	case domain.MembershipFavourite:
		result = query.Delete(&entities.Favourite{})
	default:
		result = query.Delete(&entities.ShoppingCart{})
	}
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *recipeRepository) HasMembership(ctx context.Context, kind domain.MembershipKind, userID, recipeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx)

	switch kind {
	case domain.MembershipFavourite:
		query = query.Model(&entities.Favourite{})
	default:
		query = query.Model(&entities.ShoppingCart{})
	}

	if err := query.
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
