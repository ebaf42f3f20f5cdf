package recipe

import (
	"CookShare-Backend/domain"
	"CookShare-Backend/entities"
	"CookShare-Backend/internal/utils"
	"CookShare-Backend/internal/utils/storage"
	"CookShare-Backend/pkg/catalog"
	"CookShare-Backend/pkg/user"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const shortCodeLength = 8

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		GetRecipeDetail(ctx context.Context, recipeID string, callerID string) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, callerID string, page, limit int) ([]domain.RecipeResponse, int64, error)

		AddMembership(ctx context.Context, kind domain.MembershipKind, recipeID, userID string) (domain.RecipeSummary, error)
		RemoveMembership(ctx context.Context, kind domain.MembershipKind, recipeID, userID string) error

		GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error)
		ResolveShortLink(ctx context.Context, code string) (string, error)
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		userRepository    user.UserRepository
		s3                storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	catalogRepository catalog.CatalogRepository,
	userRepository user.UserRepository,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		userRepository:    userRepository,
		s3:                s3,
	}
}

// validateTags checks the tag id list for duplicates and existence and
// returns the parsed ids in submission order.
func (s *recipeService) validateTags(ctx context.Context, tagIDs []string) ([]uuid.UUID, error) {
	if len(tagIDs) == 0 {
		return nil, domain.NewValidationError("tags", "at least one tag is required")
	}

	seen := make(map[uuid.UUID]bool, len(tagIDs))
	ids := make([]uuid.UUID, 0, len(tagIDs))
	for _, raw := range tagIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domain.NewValidationError("tags", "invalid tag id")
		}
		if seen[id] {
			return nil, domain.NewValidationError("tags", "tags must be unique")
		}
		seen[id] = true
		ids = append(ids, id)
	}

	existing, err := s.catalogRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(ids) {
		return nil, domain.NewValidationError("tags", "tag does not exist")
	}
	return ids, nil
}

// validateIngredients checks the (ingredient, amount) list for duplicates,
// positive amounts and existence, and builds the join rows in submission
// order.
func (s *recipeService) validateIngredients(ctx context.Context, ingredients []domain.RecipeIngredientRequest) ([]*entities.RecipeIngredient, error) {
	if len(ingredients) == 0 {
		return nil, domain.NewValidationError("ingredients", "at least one ingredient is required")
	}

	seen := make(map[uuid.UUID]bool, len(ingredients))
	ids := make([]uuid.UUID, 0, len(ingredients))
	rows := make([]*entities.RecipeIngredient, 0, len(ingredients))
	for position, item := range ingredients {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, domain.NewValidationError("ingredients", "invalid ingredient id")
		}
		if seen[id] {
			return nil, domain.NewValidationError("ingredients", "ingredients must be unique")
		}
		if item.Amount < 1 {
			return nil, domain.NewValidationError("ingredients", "amount must be at least 1")
		}
		seen[id] = true
		ids = append(ids, id)
		rows = append(rows, &entities.RecipeIngredient{
			ID:           uuid.New(),
			IngredientID: id,
			Amount:       item.Amount,
			Position:     position,
		})
	}

	existing, err := s.catalogRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(ids) {
		return nil, domain.NewValidationError("ingredients", "ingredient does not exist")
	}
	return rows, nil
}

func generateShortCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return uuid.New().String()[:shortCodeLength]
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:shortCodeLength]
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	authorID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	if req.Image == nil {
		return domain.RecipeResponse{}, domain.NewValidationError("image", "image is required")
	}
	if req.CookingTime < 1 {
		return domain.RecipeResponse{}, domain.NewValidationError("cooking_time", "cooking time must be at least 1")
	}

	tagIDs, err := s.validateTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	ingredientRows, err := s.validateIngredients(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	objectKey, err := s.s3.UploadFile(uuid.New().String(), req.Image, "recipes", storage.AllowImage...)
	if err != nil {
		return domain.RecipeResponse{}, domain.NewValidationError("image", "image could not be stored")
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Name:        req.Name,
		ImageURL:    s.s3.GetPublicLinkKey(objectKey),
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ShortCode:   generateShortCode(),
	}

	if err := s.recipeRepository.CreateRecipeWithAssociations(ctx, recipe, ingredientRows, tagIDs); err != nil {
		_ = s.s3.DeleteFile(objectKey)
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), userID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if recipe.AuthorID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	// Tags and ingredients are full-replace when provided, untouched when
	// omitted. Duplicates are rejected before any write happens.
	var tagIDs []uuid.UUID
	if req.Tags != nil {
		if tagIDs, err = s.validateTags(ctx, req.Tags); err != nil {
			return domain.RecipeResponse{}, err
		}
	}
	var ingredientRows []*entities.RecipeIngredient
	if req.Ingredients != nil {
		if ingredientRows, err = s.validateIngredients(ctx, req.Ingredients); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	if req.Name != "" {
		recipe.Name = req.Name
	}
	if req.Text != "" {
		recipe.Text = req.Text
	}
	if req.CookingTime != 0 {
		if req.CookingTime < 1 {
			return domain.RecipeResponse{}, domain.NewValidationError("cooking_time", "cooking time must be at least 1")
		}
		recipe.CookingTime = req.CookingTime
	}

	// A replacement image goes to a fresh key; the old object is removed
	// only after the transaction commits, so a failed update never leaves
	// the stored fields pointing at an overwritten image.
	var newObjectKey, oldObjectKey string
	if req.Image != nil {
		newObjectKey, err = s.s3.UploadFile(uuid.New().String(), req.Image, "recipes", storage.AllowImage...)
		if err != nil {
			return domain.RecipeResponse{}, domain.NewValidationError("image", "image could not be stored")
		}
		oldObjectKey = s.s3.GetObjectKeyFromLink(recipe.ImageURL)
		recipe.ImageURL = s.s3.GetPublicLinkKey(newObjectKey)
	}

	recipe.Tags = nil
	recipe.RecipeIngredients = nil
	if err := s.recipeRepository.UpdateRecipeWithAssociations(ctx, recipe, ingredientRows, tagIDs); err != nil {
		if newObjectKey != "" {
			_ = s.s3.DeleteFile(newObjectKey)
		}
		return domain.RecipeResponse{}, err
	}
	if oldObjectKey != "" {
		_ = s.s3.DeleteFile(oldObjectKey)
	}

	return s.GetRecipeDetail(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if recipe.AuthorID.String() != userID {
		return domain.ErrNotRecipeAuthor
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, recipeID); err != nil {
		return err
	}

	if recipe.ImageURL != "" {
		_ = s.s3.DeleteFile(s.s3.GetObjectKeyFromLink(recipe.ImageURL))
	}
	return nil
}

func (s *recipeService) buildRecipeResponse(ctx context.Context, recipe *entities.Recipe, callerID string) (domain.RecipeResponse, error) {
	res := domain.RecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		Tags:        make([]domain.TagResponse, 0, len(recipe.Tags)),
		Ingredients: make([]domain.RecipeIngredientResponse, 0, len(recipe.RecipeIngredients)),
	}

	if recipe.Author != nil {
		res.Author = domain.UserResponse{
			ID:        recipe.Author.ID.String(),
			Username:  recipe.Author.Username,
			Email:     recipe.Author.Email,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
			AvatarURL: recipe.Author.AvatarURL,
		}
		if callerID != "" && callerID != recipe.AuthorID.String() {
			subscribed, err := s.userRepository.IsSubscribed(ctx, callerID, recipe.AuthorID.String())
			if err != nil {
				return domain.RecipeResponse{}, err
			}
			res.Author.IsSubscribed = subscribed
		}
	}

	for _, tag := range recipe.Tags {
		res.Tags = append(res.Tags, domain.TagResponse{
			ID:   tag.ID.String(),
			Name: tag.Name,
			Slug: tag.Slug,
		})
	}
	for _, row := range recipe.RecipeIngredients {
		item := domain.RecipeIngredientResponse{
			ID:     row.IngredientID.String(),
			Amount: row.Amount,
		}
		if row.Ingredient != nil {
			item.Name = row.Ingredient.Name
			item.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		res.Ingredients = append(res.Ingredients, item)
	}

	if callerID != "" {
		recipeID := recipe.ID.String()
		favorited, err := s.recipeRepository.HasMembership(ctx, domain.MembershipFavourite, callerID, recipeID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		inCart, err := s.recipeRepository.HasMembership(ctx, domain.MembershipShoppingCart, callerID, recipeID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		res.IsFavorited = favorited
		res.IsInShoppingCart = inCart
	}

	return res, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, callerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.buildRecipeResponse(ctx, recipe, callerID)
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, callerID string, page, limit int) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, callerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		item, err := s.buildRecipeResponse(ctx, recipe, callerID)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, item)
	}
	return res, count, nil
}

func (s *recipeService) AddMembership(ctx context.Context, kind domain.MembershipKind, recipeID, userID string) (domain.RecipeSummary, error) {
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.RecipeSummary{}, domain.ErrParseUUID
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeSummary{}, domain.ErrParseUUID
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeSummary{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeSummary{}, err
	}

	created, err := s.recipeRepository.AddMembership(ctx, kind, userUUID, recipeUUID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}
	if !created {
		if kind == domain.MembershipFavourite {
			return domain.RecipeSummary{}, domain.ErrAlreadyInFavourite
		}
		return domain.RecipeSummary{}, domain.ErrAlreadyInCart
	}

	return domain.RecipeSummary{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}, nil
}

func (s *recipeService) RemoveMembership(ctx context.Context, kind domain.MembershipKind, recipeID, userID string) error {
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.ErrParseUUID
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}

	removed, err := s.recipeRepository.RemoveMembership(ctx, kind, userUUID, recipeUUID)
	if err != nil {
		return err
	}
	if !removed {
		if kind == domain.MembershipFavourite {
			return domain.ErrNotInFavourite
		}
		return domain.ErrNotInCart
	}
	return nil
}

func (s *recipeService) GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortLinkResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortLinkResponse{}, err
	}

	return domain.ShortLinkResponse{
		ShortLink: fmt.Sprintf("%s/s/%s", utils.GetConfig("APP_URL"), recipe.ShortCode),
	}, nil
}

func (s *recipeService) ResolveShortLink(ctx context.Context, code string) (string, error) {
	recipe, err := s.recipeRepository.GetRecipeByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrShortLinkNotFound
		}
		return "", err
	}
	return recipe.ID.String(), nil
}
