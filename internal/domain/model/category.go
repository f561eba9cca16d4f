package model

import "time"

// Category groups catalog products. Products refer to a category by name.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Image       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryUpdate carries partial category changes; nil fields stay untouched.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Image       *string
	IsActive    *bool
}

// Apply copies non-nil fields onto c.
func (u CategoryUpdate) Apply(c *Category) {
	if u.Name != nil {
		c.Name = *u.Name
		c.Slug = Slugify(*u.Name)
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Image != nil {
		c.Image = *u.Image
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}
