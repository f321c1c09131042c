package models

import "time"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleInstructor Role = "INSTRUCTOR"
	RoleLearner    Role = "LEARNER"
)

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleLearner:
		return true
	}
	return false
}

// Membership grants a User a Role within an Organization.
type Membership struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_membership_user_org" json:"userId"`
	OrganizationID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_membership_user_org;index" json:"organizationId"`
	Role           Role      `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt      time.Time `json:"createdAt"`

	// Relations
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}
