package shopping

import (
	"CookShare-Backend/domain"
	"CookShare-Backend/entities"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeShoppingRepository struct {
	rows    []*entities.RecipeIngredient
	recipes []*entities.Recipe
}

func (f *fakeShoppingRepository) GetCartRecipeIngredients(ctx context.Context, userID string) ([]*entities.RecipeIngredient, error) {
	return f.rows, nil
}

func (f *fakeShoppingRepository) GetCartRecipes(ctx context.Context, userID string) ([]*entities.Recipe, error) {
	return f.recipes, nil
}

type fakeUserRepository struct {
	users map[string]*entities.User
}

func (f *fakeUserRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) CreateUser(ctx context.Context, user *entities.User) error { return nil }
func (f *fakeUserRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepository) UpdateUser(ctx context.Context, user *entities.User) error { return nil }
func (f *fakeUserRepository) Subscribe(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	return false, nil
}
func (f *fakeUserRepository) Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	return false, nil
}
func (f *fakeUserRepository) IsSubscribed(ctx context.Context, followerID, authorID string) (bool, error) {
	return false, nil
}
func (f *fakeUserRepository) GetSubscribedAuthors(ctx context.Context, followerID string, page, limit int) ([]*entities.User, int64, error) {
	return nil, 0, nil
}
func (f *fakeUserRepository) GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	return nil, nil
}
func (f *fakeUserRepository) CountRecipesByAuthor(ctx context.Context, authorID string) (int64, error) {
	return 0, nil
}

func ingredientRow(name, unit string, amount int) *entities.RecipeIngredient {
	return &entities.RecipeIngredient{
		ID:     uuid.New(),
		Amount: amount,
		Ingredient: &entities.Ingredient{
			ID:              uuid.New(),
			Name:            name,
			MeasurementUnit: unit,
		},
	}
}

func TestAggregateItemsSumsByIdentity(t *testing.T) {
	rows := []*entities.RecipeIngredient{
		ingredientRow("flour", "g", 200),
		ingredientRow("flour", "g", 300),
		ingredientRow("milk", "ml", 250),
	}

	items := aggregateItems(rows)

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "flour" || items[0].TotalAmount != 500 {
		t.Errorf("expected flour total 500, got %s %d", items[0].Name, items[0].TotalAmount)
	}
	if items[1].Name != "milk" || items[1].TotalAmount != 250 {
		t.Errorf("expected milk total 250, got %s %d", items[1].Name, items[1].TotalAmount)
	}
}

func TestAggregateItemsKeepsUnitsSeparate(t *testing.T) {
	rows := []*entities.RecipeIngredient{
		ingredientRow("sugar", "g", 100),
		ingredientRow("sugar", "tbsp", 2),
	}

	items := aggregateItems(rows)

	if len(items) != 2 {
		t.Fatalf("same name with different units must not merge, got %d items", len(items))
	}
	if items[0].MeasurementUnit != "g" || items[1].MeasurementUnit != "tbsp" {
		t.Errorf("expected unit order [g tbsp], got [%s %s]", items[0].MeasurementUnit, items[1].MeasurementUnit)
	}
}

func TestAggregateItemsSortsCaseInsensitively(t *testing.T) {
	rows := []*entities.RecipeIngredient{
		ingredientRow("Carrot", "pcs", 3),
		ingredientRow("apple", "pcs", 2),
		ingredientRow("Banana", "pcs", 1),
	}

	items := aggregateItems(rows)

	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.Name)
	}
	want := []string{"apple", "Banana", "Carrot"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestAggregateItemsIgnoresDuplicateRows(t *testing.T) {
	row := ingredientRow("flour", "g", 200)
	items := aggregateItems([]*entities.RecipeIngredient{row, row})

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].TotalAmount != 200 {
		t.Errorf("repeated row must not double-count, got %d", items[0].TotalAmount)
	}
}

func TestAggregateItemsSkipsRowsWithoutIngredient(t *testing.T) {
	rows := []*entities.RecipeIngredient{
		{ID: uuid.New(), Amount: 5},
		ingredientRow("milk", "ml", 250),
	}

	items := aggregateItems(rows)

	if len(items) != 1 || items[0].Name != "milk" {
		t.Fatalf("expected only milk, got %+v", items)
	}
}

func TestDistinctRecipesDeduplicates(t *testing.T) {
	author := &entities.User{ID: uuid.New(), Username: "chef"}
	pancakes := &entities.Recipe{ID: uuid.New(), Name: "Pancakes", Author: author}

	recipes := distinctRecipes([]*entities.Recipe{pancakes, pancakes})

	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}
	if recipes[0].Name != "Pancakes" || recipes[0].Author != "chef" {
		t.Errorf("unexpected recipe entry: %+v", recipes[0])
	}
}

func TestRenderShoppingListFormat(t *testing.T) {
	generatedAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	items := []domain.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", TotalAmount: 500},
		{Name: "milk", MeasurementUnit: "ml", TotalAmount: 250},
	}
	recipes := []domain.ShoppingListRecipe{
		{Name: "Pancakes", Author: "chef"},
	}

	report := renderShoppingList("alice", generatedAt, items, recipes)

	for _, want := range []string{
		"Shopping list for alice\n",
		"Generated at 2025-06-01 12:30\n",
		"Products:\n",
		"1. Flour: 500 g\n",
		"2. Milk: 250 ml\n",
		"Recipes:\n",
		"- Pancakes (by chef)\n",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestGenerateShoppingListEmptyCart(t *testing.T) {
	owner := &entities.User{ID: uuid.New(), Username: "alice"}
	service := NewShoppingService(
		&fakeShoppingRepository{},
		&fakeUserRepository{users: map[string]*entities.User{owner.ID.String(): owner}},
	)

	report, err := service.GenerateShoppingList(context.Background(), owner.ID.String())
	if err != nil {
		t.Fatalf("empty cart must not error: %v", err)
	}
	if !strings.Contains(report, "Products:\n\nRecipes:\n") {
		t.Errorf("expected empty sections, got:\n%s", report)
	}
}

func TestGenerateShoppingListUnknownUser(t *testing.T) {
	service := NewShoppingService(&fakeShoppingRepository{}, &fakeUserRepository{users: map[string]*entities.User{}})

	_, err := service.GenerateShoppingList(context.Background(), uuid.New().String())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
