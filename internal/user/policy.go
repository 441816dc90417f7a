package user

// The functions below are list algebra only; they never persist anything and
// never modify their input slices.

// AddFavourite appends loc unless a favourite with the same coordinates exists.
func AddFavourite(favs []SavedLocation, loc SavedLocation) ([]SavedLocation, error) {
	for _, f := range favs {
		if f.Same(loc.Lat, loc.Lon) {
			return favs, ErrDuplicateFavourite
		}
	}
	out := make([]SavedLocation, 0, len(favs)+1)
	out = append(out, favs...)
	return append(out, loc), nil
}

// RemoveFavourite drops every favourite at (lat, lon). Removing a missing
// entry is not an error.
func RemoveFavourite(favs []SavedLocation, lat, lon float64) []SavedLocation {
	out := make([]SavedLocation, 0, len(favs))
	for _, f := range favs {
		if !f.Same(lat, lon) {
			out = append(out, f)
		}
	}
	return out
}

// RecordRecentSearch evicts any entry at the same coordinates, puts entry at
// the head and truncates the list to limit entries.
func RecordRecentSearch(recent []RecentSearchEntry, entry RecentSearchEntry, limit int) []RecentSearchEntry {
	out := make([]RecentSearchEntry, 0, len(recent)+1)
	out = append(out, entry)
	for _, r := range recent {
		if !r.Same(entry.Lat, entry.Lon) {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
