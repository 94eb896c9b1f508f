package models

import "time"

const (
	MinReviewRating = 1
	MaxReviewRating = 10
)

type Review struct {
	ID       int64      `json:"id"`
	UserID   int64      `json:"user_id"`
	MovieID  int64      `json:"movie_id"`
	Username string     `json:"username,omitempty"` // For display
	Text     *string    `json:"text,omitempty"`
	Rating   int        `json:"rating"`
	Created  time.Time  `json:"created"`
	Updated  *time.Time `json:"updated,omitempty"`
}

// Body returns the review text, or "" when none was written.
func (r Review) Body() string {
	if r.Text == nil {
		return ""
	}
	return *r.Text
}
