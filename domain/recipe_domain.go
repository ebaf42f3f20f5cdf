package domain

import (
	"fmt"
	"mime/multipart"
)

var (
	MessageSuccessGetRecipes    = "success get recipes"
	MessageSuccessGetRecipe     = "success get recipe detail"
	MessageSuccessCreateRecipe  = "recipe created successfully"
	MessageSuccessUpdateRecipe  = "recipe updated successfully"
	MessageSuccessDeleteRecipe  = "recipe deleted successfully"
	MessageSuccessAddMembership = "recipe added successfully"
	MessageSuccessRemoveMember  = "recipe removed successfully"
	MessageSuccessGetShortLink  = "success get short link"

	MessageFailedGetRecipes    = "failed to get recipes"
	MessageFailedGetRecipe     = "failed to get recipe detail"
	MessageFailedCreateRecipe  = "failed to create recipe"
	MessageFailedUpdateRecipe  = "failed to update recipe"
	MessageFailedDeleteRecipe  = "failed to delete recipe"
	MessageFailedAddMembership = "failed to add recipe"
	MessageFailedRemoveMember  = "failed to remove recipe"
	MessageFailedGetShortLink  = "failed to get short link"

	ErrRecipeNotFound     = fmt.Errorf("recipe %w", ErrNotFound)
	ErrShortLinkNotFound  = fmt.Errorf("short link %w", ErrNotFound)
	ErrNotRecipeAuthor    = fmt.Errorf("only the author may modify a recipe: %w", ErrForbidden)
	ErrAlreadyInFavourite = fmt.Errorf("recipe already in favourites: %w", ErrConflict)
	ErrAlreadyInCart      = fmt.Errorf("recipe already in shopping cart: %w", ErrConflict)
	ErrNotInFavourite     = fmt.Errorf("favourite %w", ErrNotFound)
	ErrNotInCart          = fmt.Errorf("shopping cart entry %w", ErrNotFound)
)

// MembershipKind selects which (user, recipe) membership table a toggle
// operates on. Favourite and shopping cart share one add/remove path.
type MembershipKind string

const (
	MembershipFavourite    MembershipKind = "favourite"
	MembershipShoppingCart MembershipKind = "shopping_cart"
)

type (
	RecipeIngredientRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1"`
	}

	CreateRecipeRequest struct {
		Name        string                    `json:"name" form:"name" validate:"required,max=256"`
		Text        string                    `json:"text" form:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" form:"cooking_time" validate:"required,min=1"`
		Tags        []string                  `json:"tags" form:"tags" validate:"required,min=1,dive,uuid"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
		Image       *multipart.FileHeader     `json:"-" form:"image"`
	}

	// UpdateRecipeRequest allows partial scalar updates. Tags and
	// ingredients, when present, are validated in full and replace the
	// prior associations entirely.
	UpdateRecipeRequest struct {
		Name        string                    `json:"name" form:"name" validate:"omitempty,max=256"`
		Text        string                    `json:"text" form:"text"`
		CookingTime int                       `json:"cooking_time" form:"cooking_time" validate:"omitempty,min=1"`
		Tags        []string                  `json:"tags" form:"tags" validate:"omitempty,min=1,dive,uuid"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"omitempty,min=1,dive"`
		Image       *multipart.FileHeader     `json:"-" form:"image"`
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID                string                     `json:"id"`
		Name              string                     `json:"name"`
		Author            UserResponse               `json:"author"`
		ImageURL          string                     `json:"image"`
		Text              string                     `json:"text"`
		CookingTime       int                        `json:"cooking_time"`
		Tags              []TagResponse              `json:"tags"`
		Ingredients       []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited       bool                       `json:"is_favorited"`
		IsInShoppingCart  bool                       `json:"is_in_shopping_cart"`
	}

	// RecipeSummary is the compact representation returned by membership
	// toggles and subscription listings.
	RecipeSummary struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ImageURL    string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	RecipeFilter struct {
		AuthorID         string
		TagSlugs         []string
		OnlyFavorited    bool
		OnlyInCart       bool
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}
)
