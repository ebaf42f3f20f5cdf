package shopping

import (
	"CookShare-Backend/domain"
	"CookShare-Backend/entities"
	"CookShare-Backend/pkg/user"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// ShoppingService produces the downloadable shopping list: every
	// ingredient requirement of every cart recipe, grouped by ingredient
	// identity (name, measurement unit) and summed.
	ShoppingService interface {
		GenerateShoppingList(ctx context.Context, userID string) (string, error)
	}

	shoppingService struct {
		shoppingRepository ShoppingRepository
		userRepository     user.UserRepository
	}
)

func NewShoppingService(shoppingRepository ShoppingRepository, userRepository user.UserRepository) ShoppingService {
	return &shoppingService{
		shoppingRepository: shoppingRepository,
		userRepository:     userRepository,
	}
}

type ingredientIdentity struct {
	name string
	unit string
}

// aggregateItems groups the cart's ingredient rows by (name, unit) and
// sums amounts, sorted case-insensitively by name for deterministic
// output. Rows are deduplicated by id first so a repeated cart row can
// never double-count.
func aggregateItems(rows []*entities.RecipeIngredient) []domain.ShoppingListItem {
	seen := make(map[uuid.UUID]bool, len(rows))
	totals := make(map[ingredientIdentity]int)
	for _, row := range rows {
		if row.Ingredient == nil || seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		key := ingredientIdentity{name: row.Ingredient.Name, unit: row.Ingredient.MeasurementUnit}
		totals[key] += row.Amount
	}

	items := make([]domain.ShoppingListItem, 0, len(totals))
	for key, total := range totals {
		items = append(items, domain.ShoppingListItem{
			Name:            key.name,
			MeasurementUnit: key.unit,
			TotalAmount:     total,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items
}

// distinctRecipes deduplicates cart recipes by id, preserving order.
func distinctRecipes(recipes []*entities.Recipe) []domain.ShoppingListRecipe {
	seen := make(map[uuid.UUID]bool, len(recipes))
	res := make([]domain.ShoppingListRecipe, 0, len(recipes))
	for _, recipe := range recipes {
		if seen[recipe.ID] {
			continue
		}
		seen[recipe.ID] = true
		item := domain.ShoppingListRecipe{Name: recipe.Name}
		if recipe.Author != nil {
			item.Author = recipe.Author.Username
		}
		res = append(res, item)
	}
	return res
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// renderShoppingList formats the plain-text report. The exact layout is a
// contract: the file is handed to the end user as a download.
func renderShoppingList(username string, generatedAt time.Time, items []domain.ShoppingListItem, recipes []domain.ShoppingListRecipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Shopping list for %s\n", username)
	fmt.Fprintf(&b, "Generated at %s\n\n", generatedAt.Format("2006-01-02 15:04"))

	b.WriteString("Products:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s: %d %s\n", i+1, capitalize(item.Name), item.TotalAmount, item.MeasurementUnit)
	}

	b.WriteString("\nRecipes:\n")
	for _, recipe := range recipes {
		if recipe.Author != "" {
			fmt.Fprintf(&b, "- %s (by %s)\n", recipe.Name, recipe.Author)
		} else {
			fmt.Fprintf(&b, "- %s\n", recipe.Name)
		}
	}

	return b.String()
}

// GenerateShoppingList renders the report for the user's current cart.
// An empty cart produces a report with empty sections, not an error.
func (s *shoppingService) GenerateShoppingList(ctx context.Context, userID string) (string, error) {
	owner, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", err
	}

	rows, err := s.shoppingRepository.GetCartRecipeIngredients(ctx, userID)
	if err != nil {
		return "", err
	}
	recipes, err := s.shoppingRepository.GetCartRecipes(ctx, userID)
	if err != nil {
		return "", err
	}

	return renderShoppingList(owner.Username, time.Now(), aggregateItems(rows), distinctRecipes(recipes)), nil
}
