package domain

import (
	"time"

	"github.com/google/uuid"
)

type Rating string

const (
	RatingExcellent   Rating = "Excellent"
	RatingWonderful   Rating = "Wonderful"
	RatingProblematic Rating = "Problematic"
	RatingUnableToUse Rating = "Unable to use"
)

func (r Rating) IsValid() bool {
	switch r {
	case RatingExcellent, RatingWonderful, RatingProblematic, RatingUnableToUse:
		return true
	}
	return false
}

type Feedback struct {
	ID          uuid.UUID
	CustomerID  string
	Suggestions string
	Rating      Rating
	CreatedAt   time.Time
}
