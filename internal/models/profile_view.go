package models

import "time"

// ProfileView records one visit to a profile, optionally enriched with
// the visitor's approximate location.
type ProfileView struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	ProfileOwnerID uint  `gorm:"not null;index" json:"profile_owner_id"`
	ProfileOwner   *User `gorm:"foreignKey:ProfileOwnerID;constraint:OnDelete:CASCADE" json:"-"`
	ViewerID       *uint `gorm:"index" json:"viewer_id"`
	Viewer         *User `gorm:"foreignKey:ViewerID;constraint:OnDelete:SET NULL" json:"-"`
	// ViewerName is kept even after the viewer row is deleted
	ViewerName string    `gorm:"size:255;not null" json:"viewer_name"`
	IPAddress  string    `gorm:"size:64" json:"ip_address"`
	City       *string   `gorm:"size:120" json:"city"`
	Region     *string   `gorm:"size:120" json:"region"`
	Country    *string   `gorm:"size:120" json:"country"`
	Latitude   *float64  `json:"latitude"`
	Longitude  *float64  `json:"longitude"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
