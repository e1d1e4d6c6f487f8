package domain

import "time"

// Movie is the stored movie document. Ratings are embedded and AverageRating is
// derived from them; 0 means the movie has not been rated.
type Movie struct {
	TTID          string    `json:"tt_id"`
	Title         string    `json:"title"`
	PublishDate   time.Time `json:"publish_date"`
	Length        int       `json:"length,omitempty"`
	Director      string    `json:"director,omitempty"`
	Description   string    `json:"description,omitempty"`
	Ratings       []Rating  `json:"ratings,omitempty"`
	AverageRating int       `json:"average_rating,omitempty"`
}

// Clone returns a copy whose Ratings slice does not alias m's.
func (m Movie) Clone() Movie {
	if m.Ratings != nil {
		ratings := make([]Rating, len(m.Ratings))
		copy(ratings, m.Ratings)
		m.Ratings = ratings
	}
	return m
}

// RatingBy returns the rating left by username, if any.
func (m Movie) RatingBy(username string) (Rating, bool) {
	for _, r := range m.Ratings {
		if r.Username == username {
			return r, true
		}
	}
	return Rating{}, false
}

// WithoutRatings strips the embedded ratings, leaving the public movie view.
func (m Movie) WithoutRatings() Movie {
	m.Ratings = nil
	return m
}

// OnlyRatingBy keeps username's rating and drops everyone else's.
func (m Movie) OnlyRatingBy(username string) Movie {
	r, ok := m.RatingBy(username)
	if !ok {
		m.Ratings = nil
		return m
	}
	m.Ratings = []Rating{r}
	return m
}
