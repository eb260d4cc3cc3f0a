// Package models holds the documents the store-lit API returns to the CLI.
package models

import "time"

type File struct {
	ID         string    `json:"id"`
	BlobID     string    `json:"blobId"`
	OwnerID    string    `json:"ownerId"`
	Name       string    `json:"name"`
	Extension  string    `json:"extension"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	SharedWith []string  `json:"sharedWith"`
	IsAvatar   bool      `json:"isAvatar"`
	CreatedAt  time.Time `json:"createdAt"`
}

type FileList struct {
	Documents []*File `json:"documents"`
	Total     int     `json:"total"`
	TotalSize int64   `json:"totalSize"`
}

type Owner struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ActionResult is the reply to a file action. Which fields are set depends
// on the action.
type ActionResult struct {
	File    *File  `json:"file,omitempty"`
	User    *User  `json:"user,omitempty"`
	Owner   *Owner `json:"owner,omitempty"`
	URL     string `json:"url,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}
