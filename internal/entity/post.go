package entity

import "time"

// Post is the backend-owned content entity as it appears on the wire. The
// client never mutates a Post in place; every change goes through a full
// form submit and comes back on the next refresh.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"authorEmail"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	CreatedAt   time.Time `json:"createdAt"`
	Likes       int       `json:"likes"`
	Views       int       `json:"views"`
	Images      []string  `json:"images"`
}

// FormFields carries the full text payload of one create or update submit.
// Submits are all-or-nothing: every field is sent every time, never a diff.
type FormFields struct {
	Author      string
	AuthorEmail string
	Title       string
	Category    string
	Subcategory string
	Summary     string
	Description string
}
