package domain

import (
	"fmt"
	"math"
)

const (
	MinPoints = 1
	MaxPoints = 10
)

// Rating is a single user's score for a movie.
type Rating struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// ValidatePoints rejects scores outside [MinPoints, MaxPoints].
func ValidatePoints(points int) error {
	if points < MinPoints || points > MaxPoints {
		return InvalidInput(fmt.Sprintf("Amount of points must be between %d and %d.", MinPoints, MaxPoints))
	}
	return nil
}

// Average returns the mean of points rounded half away from zero, or 0 for an
// empty set.
func Average(points []int) int {
	if len(points) == 0 {
		return 0
	}
	sum := 0
	for _, p := range points {
		sum += p
	}
	return int(math.Round(float64(sum) / float64(len(points))))
}

// AverageWith computes the average after username's rating is set to points.
// An absent rating is appended.
func AverageWith(ratings []Rating, username string, points int) int {
	all := make([]int, 0, len(ratings)+1)
	for _, r := range ratings {
		if r.Username != username {
			all = append(all, r.Points)
		}
	}
	return Average(append(all, points))
}

// AverageWithout computes the average once username's rating is removed.
func AverageWithout(ratings []Rating, username string) int {
	rest := make([]int, 0, len(ratings))
	for _, r := range ratings {
		if r.Username != username {
			rest = append(rest, r.Points)
		}
	}
	return Average(rest)
}
