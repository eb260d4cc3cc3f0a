// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/Vicktor007/store-lit/internal/common"
)

// User is the profile document of a signed-up person.
//
// AvatarFileID and AvatarBlobID are both set when the avatar is an uploaded
// File, and both nil when AvatarURL is one of the placeholder images.
type User struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"accountId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	AvatarURL    string    `json:"avatarUrl"`
	AvatarFileID *string   `json:"avatarFileId,omitempty"`
	AvatarBlobID *string   `json:"avatarBlobId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasCustomAvatar reports whether the avatar is backed by an uploaded File.
func (u *User) HasCustomAvatar() bool {
	return u.AvatarFileID != nil && u.AvatarBlobID != nil
}

// AvatarPointer is the trio of User fields that locate the current avatar.
type AvatarPointer struct {
	URL    string
	FileID *string
	BlobID *string
}

// PlaceholderAvatars is the fixed set of stock avatar images. The first one
// is assigned at sign-up.
var PlaceholderAvatars = common.PlaceholderAvatars

// IsPlaceholderAvatar reports whether url is one of PlaceholderAvatars.
func IsPlaceholderAvatar(url string) bool {
	for _, p := range PlaceholderAvatars {
		if p == url {
			return true
		}
	}
	return false
}
