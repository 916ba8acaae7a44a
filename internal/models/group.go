package models

// Group is a named topical category posts can belong to.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"unique;not null;index" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}
