package shopping

import (
	"CookShare-Backend/entities"
	"context"

	"gorm.io/gorm"
)

type (
	ShoppingRepository interface {
		GetCartRecipeIngredients(ctx context.Context, userID string) ([]*entities.RecipeIngredient, error)
		GetCartRecipes(ctx context.Context, userID string) ([]*entities.Recipe, error)
	}

	shoppingRepository struct {
		db *gorm.DB
	}
)

func NewShoppingRepository(db *gorm.DB) ShoppingRepository {
	return &shoppingRepository{db: db}
}

func (r *shoppingRepository) GetCartRecipeIngredients(ctx context.Context, userID string) ([]*entities.RecipeIngredient, error) {
	var rows []*entities.RecipeIngredient
	if err := r.db.WithContext(ctx).
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Preload("Ingredient").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shoppingRepository) GetCartRecipes(ctx context.Context, userID string) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	if err := r.db.WithContext(ctx).
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
		Where("shopping_carts.user_id = ?", userID).
		Preload("Author").
		Order("recipes.name asc").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}
