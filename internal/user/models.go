package user

import (
	"time"
)

// SavedLocation is a place the user kept. Identity is the exact (Lat, Lon)
// pair; no tolerance is applied.
type SavedLocation struct {
	Lat          float64 `json:"lat" bson:"lat"`
	Lon          float64 `json:"lon" bson:"lon"`
	LocationName string  `json:"locationName" bson:"locationName"`
	Country      string  `json:"country" bson:"country"`
}

// Same reports whether l and other denote the same coordinates.
func (l SavedLocation) Same(lat, lon float64) bool {
	return l.Lat == lat && l.Lon == lon
}

// RecentSearchEntry is a SavedLocation stamped with the time it was searched.
type RecentSearchEntry struct {
	SavedLocation `bson:",inline"`
	SearchedAt    time.Time `json:"searchedAt" bson:"searchedAt"`
}

// User owns an unordered set of favourites and a bounded, most-recent-first
// list of searches.
type User struct {
	ID             string              `json:"_id" bson:"_id"`
	Name           string              `json:"name" bson:"name"`
	Email          string              `json:"email" bson:"email"`
	PasswordHash   string              `json:"-" bson:"password"`
	Favourites     []SavedLocation     `json:"favourites" bson:"favourites"`
	RecentSearches []RecentSearchEntry `json:"recentSearches" bson:"recentSearches"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Public is the subset of a user returned by signup and login.
type Public struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() Public {
	return Public{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Clone returns a deep copy so callers can mutate lists without touching the original.
func (u *User) Clone() *User {
	c := *u
	c.Favourites = append([]SavedLocation(nil), u.Favourites...)
	c.RecentSearches = append([]RecentSearchEntry(nil), u.RecentSearches...)
	return &c
}
