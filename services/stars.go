package services

import (
	"math"
	"strings"
)

const maxStars = 5

// Stars is a 0-5 star breakdown of a 0-10 rating.
type Stars struct {
	Full  int `json:"full"`
	Half  int `json:"half"`
	Empty int `json:"empty"`
}

// CalculateIMDbStars converts a 0-10 rating to full, half and empty stars on
// a 0-5 scale. Ratings outside 0-10 are the caller's problem.
func CalculateIMDbStars(rating float64) Stars {
	converted := math.Round(rating/2*10) / 10
	full := int(converted)
	half := 0
	// compare in tenths so 3.5 - 3 does not land on 0.4999…
	if math.Round(converted*10)-float64(full*10) >= 5 {
		half = 1
	}
	return Stars{Full: full, Half: half, Empty: maxStars - full - half}
}

func (s Stars) String() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("★", max(s.Full, 0)))
	b.WriteString(strings.Repeat("½", max(s.Half, 0)))
	b.WriteString(strings.Repeat("☆", max(s.Empty, 0)))
	return b.String()
}
