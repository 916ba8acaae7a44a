package models

import "time"

// Post is a single authored text entry, optionally tagged with a group and
// an image. Posts are always listed newest first.
//
// Deletion policies are load-bearing: deleting the author nulls AuthorID,
// deleting the group removes the post.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  *uint     `gorm:"index" json:"author_id,omitempty"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"group,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
