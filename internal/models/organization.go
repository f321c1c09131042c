package models

import "time"

type Organization struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Memberships []Membership `gorm:"foreignKey:OrganizationID" json:"-"`
	Courses     []Course     `gorm:"foreignKey:OrganizationID" json:"-"`
}
