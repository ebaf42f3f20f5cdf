package recipe

import (
	"CookShare-Backend/domain"
	"CookShare-Backend/entities"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRecipeRepository struct {
	recipes     map[uuid.UUID]*entities.Recipe
	ingredients map[uuid.UUID][]*entities.RecipeIngredient
	tags        map[uuid.UUID][]uuid.UUID
	memberships map[domain.MembershipKind]map[string]bool

	// mirrors Preload("Ingredient") on reads
	ingredientLookup map[uuid.UUID]*entities.Ingredient

	updateErr error
}

func newFakeRecipeRepository() *fakeRecipeRepository {
	return &fakeRecipeRepository{
		recipes:     make(map[uuid.UUID]*entities.Recipe),
		ingredients: make(map[uuid.UUID][]*entities.RecipeIngredient),
		tags:        make(map[uuid.UUID][]uuid.UUID),
		memberships: map[domain.MembershipKind]map[string]bool{
			domain.MembershipFavourite:    {},
			domain.MembershipShoppingCart: {},
		},
	}
}

func membershipKey(userID, recipeID string) string {
	return userID + "/" + recipeID
}

func (f *fakeRecipeRepository) CreateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	f.recipes[recipe.ID] = recipe
	f.ingredients[recipe.ID] = ingredients
	f.tags[recipe.ID] = tagIDs
	return nil
}

func (f *fakeRecipeRepository) UpdateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.recipes[recipe.ID] = recipe
	if ingredients != nil {
		f.ingredients[recipe.ID] = ingredients
	}
	if tagIDs != nil {
		f.tags[recipe.ID] = tagIDs
	}
	return nil
}

func (f *fakeRecipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	recipeID, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	recipe, ok := f.recipes[recipeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *recipe
	rows := make([]*entities.RecipeIngredient, 0, len(f.ingredients[recipeID]))
	for _, row := range f.ingredients[recipeID] {
		loaded := *row
		loaded.Ingredient = f.ingredientLookup[row.IngredientID]
		rows = append(rows, &loaded)
	}
	copied.RecipeIngredients = rows
	return &copied, nil
}

func (f *fakeRecipeRepository) GetRecipeByShortCode(ctx context.Context, code string) (*entities.Recipe, error) {
	for _, recipe := range f.recipes {
		if recipe.ShortCode == code {
			return recipe, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRecipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, callerID string, page, limit int) ([]*entities.Recipe, int64, error) {
	res := make([]*entities.Recipe, 0, len(f.recipes))
	for _, recipe := range f.recipes {
		res = append(res, recipe)
	}
	return res, int64(len(res)), nil
}

func (f *fakeRecipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	recipeID, err := uuid.Parse(id)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	delete(f.recipes, recipeID)
	delete(f.ingredients, recipeID)
	delete(f.tags, recipeID)
	return nil
}

func (f *fakeRecipeRepository) AddMembership(ctx context.Context, kind domain.MembershipKind, userID, recipeID uuid.UUID) (bool, error) {
	key := membershipKey(userID.String(), recipeID.String())
	if f.memberships[kind][key] {
		return false, nil
	}
	f.memberships[kind][key] = true
	return true, nil
}

func (f *fakeRecipeRepository) RemoveMembership(ctx context.Context, kind domain.MembershipKind, userID, recipeID uuid.UUID) (bool, error) {
	key := membershipKey(userID.String(), recipeID.String())
	if !f.memberships[kind][key] {
		return false, nil
	}
	delete(f.memberships[kind], key)
	return true, nil
}

func (f *fakeRecipeRepository) HasMembership(ctx context.Context, kind domain.MembershipKind, userID, recipeID string) (bool, error) {
	return f.memberships[kind][membershipKey(userID, recipeID)], nil
}

type fakeCatalogRepository struct {
	tags        map[uuid.UUID]*entities.Tag
	ingredients map[uuid.UUID]*entities.Ingredient
}

func (f *fakeCatalogRepository) GetTags(ctx context.Context) ([]*entities.Tag, error) {
	return nil, nil
}

func (f *fakeCatalogRepository) GetTagByID(ctx context.Context, id string) (*entities.Tag, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepository) GetTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error) {
	res := make([]*entities.Tag, 0, len(ids))
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			res = append(res, tag)
		}
	}
	return res, nil
}

func (f *fakeCatalogRepository) GetIngredients(ctx context.Context, namePrefix string) ([]*entities.Ingredient, error) {
	return nil, nil
}

func (f *fakeCatalogRepository) GetIngredientByID(ctx context.Context, id string) (*entities.Ingredient, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepository) GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Ingredient, error) {
	res := make([]*entities.Ingredient, 0, len(ids))
	for _, id := range ids {
		if ingredient, ok := f.ingredients[id]; ok {
			res = append(res, ingredient)
		}
	}
	return res, nil
}

func (f *fakeCatalogRepository) ImportTags(ctx context.Context, tags []*entities.Tag) (int64, error) {
	return 0, nil
}

func (f *fakeCatalogRepository) ImportIngredients(ctx context.Context, ingredients []*entities.Ingredient) (int64, error) {
	return 0, nil
}

type fakeUserRepository struct{}

func (f *fakeUserRepository) CreateUser(ctx context.Context, user *entities.User) error { return nil }
func (f *fakeUserRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	return nil, gorm.ErrRecordNotFound
}
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

type fakeS3 struct {
	uploads int
	deletes []string
}

func (f *fakeS3) UploadFile(fileName string, file *multipart.FileHeader, folder string, allowedTypes ...string) (string, error) {
	f.uploads++
	return fmt.Sprintf("%s/%s.jpg", folder, fileName), nil
}

func (f *fakeS3) UpdateFile(objectKey string, file *multipart.FileHeader, allowedTypes ...string) (string, error) {
	return objectKey, nil
}

func (f *fakeS3) DeleteFile(objectKey string) error {
	f.deletes = append(f.deletes, objectKey)
	return nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://bucket.s3.test/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string {
	const prefix = "https://bucket.s3.test/"
	if len(link) > len(prefix) && link[:len(prefix)] == prefix {
		return link[len(prefix):]
	}
	return ""
}

type recipeFixture struct {
	service    RecipeService
	repository *fakeRecipeRepository
	catalog    *fakeCatalogRepository
	s3         *fakeS3
	tag        *entities.Tag
	flour      *entities.Ingredient
	milk       *entities.Ingredient
	egg        *entities.Ingredient
}

func newRecipeFixture() *recipeFixture {
	f := &recipeFixture{
		repository: newFakeRecipeRepository(),
		catalog: &fakeCatalogRepository{
			tags:        make(map[uuid.UUID]*entities.Tag),
			ingredients: make(map[uuid.UUID]*entities.Ingredient),
		},
		s3: &fakeS3{},
	}
	f.tag = &entities.Tag{ID: uuid.New(), Name: "breakfast", Slug: "breakfast"}
	f.catalog.tags[f.tag.ID] = f.tag
	f.flour = &entities.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"}
	f.milk = &entities.Ingredient{ID: uuid.New(), Name: "milk", MeasurementUnit: "ml"}
	f.egg = &entities.Ingredient{ID: uuid.New(), Name: "egg", MeasurementUnit: "pcs"}
	for _, ingredient := range []*entities.Ingredient{f.flour, f.milk, f.egg} {
		f.catalog.ingredients[ingredient.ID] = ingredient
	}
	f.repository.ingredientLookup = f.catalog.ingredients
	f.service = NewRecipeService(f.repository, f.catalog, &fakeUserRepository{}, f.s3)
	return f
}

func validCreateRequest(f *recipeFixture) domain.CreateRecipeRequest {
	return domain.CreateRecipeRequest{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Image:       &multipart.FileHeader{Filename: "pancakes.jpg"},
		Tags:        []string{f.tag.ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{
			{ID: f.flour.ID.String(), Amount: 200},
			{ID: f.milk.ID.String(), Amount: 250},
		},
	}
}

func TestCreateRecipe(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()

	res, err := f.service.CreateRecipe(context.Background(), validCreateRequest(f), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	if res.Name != "Pancakes" {
		t.Errorf("expected name Pancakes, got %s", res.Name)
	}
	if len(res.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(res.Ingredients))
	}
	if res.Ingredients[0].Name != "flour" || res.Ingredients[0].Amount != 200 {
		t.Errorf("ingredient order or amount lost: %+v", res.Ingredients[0])
	}
	if f.s3.uploads != 1 {
		t.Errorf("expected 1 upload, got %d", f.s3.uploads)
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()

	tests := []struct {
		name   string
		mutate func(*domain.CreateRecipeRequest)
	}{
		{"missing image", func(r *domain.CreateRecipeRequest) { r.Image = nil }},
		{"zero cooking time", func(r *domain.CreateRecipeRequest) { r.CookingTime = 0 }},
		{"no tags", func(r *domain.CreateRecipeRequest) { r.Tags = nil }},
		{"duplicate tags", func(r *domain.CreateRecipeRequest) {
			r.Tags = []string{f.tag.ID.String(), f.tag.ID.String()}
		}},
		{"unknown tag", func(r *domain.CreateRecipeRequest) {
			r.Tags = []string{uuid.New().String()}
		}},
		{"no ingredients", func(r *domain.CreateRecipeRequest) { r.Ingredients = nil }},
		{"duplicate ingredients", func(r *domain.CreateRecipeRequest) {
			r.Ingredients = []domain.RecipeIngredientRequest{
				{ID: f.flour.ID.String(), Amount: 100},
				{ID: f.flour.ID.String(), Amount: 200},
			}
		}},
		{"unknown ingredient", func(r *domain.CreateRecipeRequest) {
			r.Ingredients = []domain.RecipeIngredientRequest{{ID: uuid.New().String(), Amount: 100}}
		}},
		{"zero amount", func(r *domain.CreateRecipeRequest) {
			r.Ingredients = []domain.RecipeIngredientRequest{{ID: f.flour.ID.String(), Amount: 0}}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest(f)
			tc.mutate(&req)
			_, err := f.service.CreateRecipe(context.Background(), req, authorID)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if f.s3.uploads != 0 {
				t.Fatalf("no file must be stored on rejected input, saw %d uploads", f.s3.uploads)
			}
		})
	}
}

func TestUpdateRecipeReplacesIngredients(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()

	created, err := f.service.CreateRecipe(context.Background(), validCreateRequest(f), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	updated, err := f.service.UpdateRecipe(context.Background(), created.ID, domain.UpdateRecipeRequest{
		Ingredients: []domain.RecipeIngredientRequest{{ID: f.egg.ID.String(), Amount: 3}},
	}, authorID)
	if err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}

	if len(updated.Ingredients) != 1 {
		t.Fatalf("expected old ingredient set fully replaced, got %d rows", len(updated.Ingredients))
	}
	if updated.Ingredients[0].Name != "egg" || updated.Ingredients[0].Amount != 3 {
		t.Errorf("unexpected ingredient after replace: %+v", updated.Ingredients[0])
	}
	if updated.Name != "Pancakes" {
		t.Errorf("omitted fields must stay untouched, got name %s", updated.Name)
	}
}

func TestUpdateRecipeRejectsDuplicateIngredients(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()

	created, err := f.service.CreateRecipe(context.Background(), validCreateRequest(f), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	_, err = f.service.UpdateRecipe(context.Background(), created.ID, domain.UpdateRecipeRequest{
		Ingredients: []domain.RecipeIngredientRequest{
			{ID: f.egg.ID.String(), Amount: 1},
			{ID: f.egg.ID.String(), Amount: 2},
		},
	}, authorID)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	detail, err := f.service.GetRecipeDetail(context.Background(), created.ID, authorID)
	if err != nil {
		t.Fatalf("GetRecipeDetail: %v", err)
	}
	if len(detail.Ingredients) != 2 {
		t.Errorf("rejected update must leave the recipe unchanged, got %d ingredients", len(detail.Ingredients))
	}
}

func TestUpdateRecipeReplacesImage(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()

	created, err := f.service.CreateRecipe(context.Background(), validCreateRequest(f), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	oldKey := f.s3.GetObjectKeyFromLink(created.ImageURL)

	updated, err := f.service.UpdateRecipe(context.Background(), created.ID, domain.UpdateRecipeRequest{
		Image: &multipart.FileHeader{Filename: "new.jpg"},
	}, authorID)
	if err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}

	if updated.ImageURL == created.ImageURL {
		t.Error("expected a new image URL after replacing the image")
	}
	if f.s3.uploads != 2 {
		t.Errorf("expected 2 uploads, got %d", f.s3.uploads)
	}
	if len(f.s3.deletes) != 1 || f.s3.deletes[0] != oldKey {
		t.Errorf("expected the old object %q deleted after commit, got %v", oldKey, f.s3.deletes)
	}
}

func TestUpdateRecipeFailedWriteKeepsOldImage(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()

	created, err := f.service.CreateRecipe(context.Background(), validCreateRequest(f), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	oldKey := f.s3.GetObjectKeyFromLink(created.ImageURL)

	f.repository.updateErr = errors.New("write failed")
	_, err = f.service.UpdateRecipe(context.Background(), created.ID, domain.UpdateRecipeRequest{
		Image: &multipart.FileHeader{Filename: "new.jpg"},
	}, authorID)
	if err == nil {
		t.Fatal("expected update to fail")
	}

	if len(f.s3.deletes) != 1 {
		t.Fatalf("expected exactly the new upload deleted, got %v", f.s3.deletes)
	}
	if f.s3.deletes[0] == oldKey {
		t.Error("the stored image must survive a failed update")
	}

	f.repository.updateErr = nil
	detail, err := f.service.GetRecipeDetail(context.Background(), created.ID, authorID)
	if err != nil {
		t.Fatalf("GetRecipeDetail: %v", err)
	}
	if detail.ImageURL != created.ImageURL {
		t.Errorf("stored image URL changed on failed update: %s != %s", detail.ImageURL, created.ImageURL)
	}
}

func TestUpdateRecipeOnlyAuthor(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()

	created, err := f.service.CreateRecipe(context.Background(), validCreateRequest(f), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	_, err = f.service.UpdateRecipe(context.Background(), created.ID, domain.UpdateRecipeRequest{Name: "Stolen"}, uuid.New().String())
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := f.service.DeleteRecipe(context.Background(), created.ID, uuid.New().String()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden on delete, got %v", err)
	}
}

func TestUpdateRecipeNotFound(t *testing.T) {
	f := newRecipeFixture()

	_, err := f.service.UpdateRecipe(context.Background(), uuid.New().String(), domain.UpdateRecipeRequest{Name: "x"}, uuid.New().String())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestMembershipToggle(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()
	userID := uuid.New().String()

	created, err := f.service.CreateRecipe(context.Background(), validCreateRequest(f), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	for _, kind := range []domain.MembershipKind{domain.MembershipFavourite, domain.MembershipShoppingCart} {
		summary, err := f.service.AddMembership(context.Background(), kind, created.ID, userID)
		if err != nil {
			t.Fatalf("AddMembership(%s): %v", kind, err)
		}
		if summary.Name != "Pancakes" {
			t.Errorf("expected summary of the recipe, got %+v", summary)
		}

		if _, err := f.service.AddMembership(context.Background(), kind, created.ID, userID); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("second add must conflict, got %v", err)
		}

		if err := f.service.RemoveMembership(context.Background(), kind, created.ID, userID); err != nil {
			t.Fatalf("RemoveMembership(%s): %v", kind, err)
		}
		if err := f.service.RemoveMembership(context.Background(), kind, created.ID, userID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("second remove must be not-found, got %v", err)
		}
	}
}

func TestMembershipUnknownRecipe(t *testing.T) {
	f := newRecipeFixture()

	_, err := f.service.AddMembership(context.Background(), domain.MembershipFavourite, uuid.New().String(), uuid.New().String())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestMembershipFlagsInDetail(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()
	userID := uuid.New().String()

	created, err := f.service.CreateRecipe(context.Background(), validCreateRequest(f), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	if _, err := f.service.AddMembership(context.Background(), domain.MembershipFavourite, created.ID, userID); err != nil {
		t.Fatalf("AddMembership: %v", err)
	}

	detail, err := f.service.GetRecipeDetail(context.Background(), created.ID, userID)
	if err != nil {
		t.Fatalf("GetRecipeDetail: %v", err)
	}
	if !detail.IsFavorited || detail.IsInShoppingCart {
		t.Errorf("expected favorited=true cart=false, got %v %v", detail.IsFavorited, detail.IsInShoppingCart)
	}

	anonymous, err := f.service.GetRecipeDetail(context.Background(), created.ID, "")
	if err != nil {
		t.Fatalf("GetRecipeDetail anonymous: %v", err)
	}
	if anonymous.IsFavorited || anonymous.IsInShoppingCart {
		t.Errorf("anonymous callers get false flags, got %v %v", anonymous.IsFavorited, anonymous.IsInShoppingCart)
	}
}

func TestResolveShortLink(t *testing.T) {
	f := newRecipeFixture()
	authorID := uuid.New().String()

	created, err := f.service.CreateRecipe(context.Background(), validCreateRequest(f), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	recipeID, err := uuid.Parse(created.ID)
	if err != nil {
		t.Fatalf("parse recipe id: %v", err)
	}
	code := f.repository.recipes[recipeID].ShortCode
	if len(code) != shortCodeLength {
		t.Fatalf("expected %d-char short code, got %q", shortCodeLength, code)
	}

	resolved, err := f.service.ResolveShortLink(context.Background(), code)
	if err != nil {
		t.Fatalf("ResolveShortLink: %v", err)
	}
	if resolved != created.ID {
		t.Errorf("expected %s, got %s", created.ID, resolved)
	}

	if _, err := f.service.ResolveShortLink(context.Background(), "missing1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for unknown code, got %v", err)
	}
}
