// Package models holds the sticker types shared by storage, download and retrieval.
package models

import "time"

// StoredItem is the metadata record persisted next to every downloaded sticker.
type StoredItem struct {
	FileID     string  `json:"file_id"`
	UniqueID   string  `json:"unique_id"`
	IsAnimated bool    `json:"is_animated"`
	SetName    string  `json:"set_name"`
	Emoji      *string `json:"emoji"`
}

// ItemDescriptor describes one sticker of a set as reported by the content provider.
type ItemDescriptor struct {
	FileID     string
	UniqueID   string
	IsAnimated bool
	SetName    string
	Emoji      string
}

// Record builds the metadata record for the descriptor.
func (d ItemDescriptor) Record() StoredItem {
	item := StoredItem{
		FileID:     d.FileID,
		UniqueID:   d.UniqueID,
		IsAnimated: d.IsAnimated,
		SetName:    d.SetName,
	}
	if d.Emoji != "" {
		emoji := d.Emoji
		item.Emoji = &emoji
	}
	return item
}

// SetSummary is one catalog row: a sticker set downloaded for a user.
type SetSummary struct {
	UserID       int64     `json:"user_id"`
	SetName      string    `json:"set_name"`
	Enumerated   int       `json:"enumerated"`
	Saved        int       `json:"saved"`
	DownloadedAt time.Time `json:"downloaded_at"`
}
