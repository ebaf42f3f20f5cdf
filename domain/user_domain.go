package domain

import (
	"fmt"
	"mime/multipart"
)

var (
	MessageSuccessRegister         = "user registered successfully"
	MessageSuccessLogin            = "login success"
	MessageSuccessGetMe            = "success get current user"
	MessageSuccessUpdateUser       = "user updated successfully"
	MessageSuccessUploadAvatar     = "avatar uploaded successfully"
	MessageSuccessDeleteAvatar     = "avatar deleted successfully"
	MessageSuccessChangePassword   = "password changed successfully"
	MessageSuccessForgotPassword   = "password reset email sent"
	MessageSuccessResetPassword    = "password reset successfully"
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessUnsubscribe      = "unsubscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"

	MessageFailedRegister         = "failed to register user"
	MessageFailedLogin            = "failed to login"
	MessageFailedGetMe            = "failed to get current user"
	MessageFailedUpdateUser       = "failed to update user"
	MessageFailedUploadAvatar     = "failed to upload avatar"
	MessageFailedDeleteAvatar     = "failed to delete avatar"
	MessageFailedChangePassword   = "failed to change password"
	MessageFailedForgotPassword   = "failed to send password reset email"
	MessageFailedResetPassword    = "failed to reset password"
	MessageFailedSubscribe        = "failed to subscribe"
	MessageFailedUnsubscribe      = "failed to unsubscribe"
	MessageFailedGetSubscriptions = "failed to get subscriptions"

	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrEmailAlreadyExists   = fmt.Errorf("email %w", ErrConflict)
	ErrUsernameAlreadyUsed  = fmt.Errorf("username %w", ErrConflict)
	ErrCredentialsInvalid   = fmt.Errorf("invalid email or password: %w", ErrValidation)
	ErrWrongPassword        = fmt.Errorf("wrong current password: %w", ErrValidation)
	ErrAvatarNotFound       = fmt.Errorf("avatar %w", ErrNotFound)
	ErrSelfSubscription     = fmt.Errorf("cannot subscribe to yourself: %w", ErrValidation)
	ErrAlreadySubscribed    = fmt.Errorf("subscription %w", ErrConflict)
	ErrSubscriptionNotFound = fmt.Errorf("subscription %w", ErrNotFound)
)

type (
	RegisterRequest struct {
		Username  string `json:"username" validate:"required,max=150"`
		Email     string `json:"email" validate:"required,email,max=254"`
		FirstName string `json:"first_name" validate:"required,max=150"`
		LastName  string `json:"last_name" validate:"required,max=150"`
		Password  string `json:"password" validate:"required,min=8"`
	}

	RegisterResponse struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}

	UpdateUserRequest struct {
		FirstName string `json:"first_name" validate:"omitempty,max=150"`
		LastName  string `json:"last_name" validate:"omitempty,max=150"`
		Username  string `json:"username" validate:"omitempty,max=150"`
	}

	UploadAvatarRequest struct {
		Avatar *multipart.FileHeader `json:"avatar" form:"avatar" validate:"required"`
	}

	UploadAvatarResponse struct {
		AvatarURL string `json:"avatar"`
	}

	ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}

	// UserResponse is the outbound user representation. IsSubscribed is
	// computed relative to the caller and false for anonymous callers.
	UserResponse struct {
		ID           string `json:"id"`
		Username     string `json:"username"`
		Email        string `json:"email"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		AvatarURL    string `json:"avatar,omitempty"`
		IsSubscribed bool   `json:"is_subscribed"`
	}

	// SubscriptionResponse is a followed author with a window of their recipes.
	SubscriptionResponse struct {
		UserResponse
		Recipes      []RecipeSummary `json:"recipes"`
		RecipesCount int64           `json:"recipes_count"`
	}
)
