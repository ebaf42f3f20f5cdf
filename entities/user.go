package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:150" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:254" json:"email"`
	Password  string    `json:"-"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `gorm:"default:user" json:"role"`

	Recipes []*Recipe `gorm:"foreignKey:AuthorID" json:"-"`
	Timestamp
}

// Subscription is a follow relationship. A follower subscribes to an
// author at most once; self-subscription is rejected in the service layer.
type Subscription struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	FollowerID uuid.UUID `gorm:"uniqueIndex:idx_follower_author" json:"follower_id"`
	AuthorID   uuid.UUID `gorm:"uniqueIndex:idx_follower_author" json:"author_id"`

	Follower *User `gorm:"foreignKey:FollowerID"`
	Author   *User `gorm:"foreignKey:AuthorID"`
	Timestamp
}
