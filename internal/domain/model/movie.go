package model

import "time"

type Movie struct {
	ID               ID     `json:"id"`
	Title            string `json:"title"`
	Year             int    `json:"year,omitempty"`
	Genre            string `json:"genre,omitempty"`
	ProcessingStatus string `json:"processing_status,omitempty"`
}

type CastMember struct {
	Name          string `json:"name"`
	RoleType      string `json:"role_type,omitempty"`
	Role          string `json:"role,omitempty"`
	CharacterName string `json:"character_name,omitempty"`
}

// DisplayRole prefers role_type, falling back to role.
func (c CastMember) DisplayRole() string {
	if c.RoleType != "" {
		return c.RoleType
	}
	return c.Role
}

// MovieDetails is the aggregated movie view: the movie, its cast and crew, and reviews.
type MovieDetails struct {
	Movie       Movie        `json:"movie"`
	CastAndCrew []CastMember `json:"cast_and_crew"`
	Reviews     struct {
		Items []Review `json:"items"`
	} `json:"reviews"`
}

type Review struct {
	ID        ID        `json:"id"`
	MovieID   ID        `json:"movie_id"`
	UserID    ID        `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReview is the payload for POST /reviews.
type NewReview struct {
	UserID  ID     `json:"user_id" validate:"required"`
	MovieID ID     `json:"movie_id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

type Health struct {
	Status string `json:"status"`
}
