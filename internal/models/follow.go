package models

// Follow is a directed relationship: User wants to see Author's posts in
// their feed. The uniqueness constraint is on the follower column alone, so
// each user has at most one active follow row.
type Follow struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	UserID   uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User     *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint  `gorm:"index;not null" json:"author_id"`
	Author   *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
}
