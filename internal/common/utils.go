package common

import "strings"

// CityFromLabel returns the first comma-separated segment of a place label:
// "New York, NY, USA" becomes "New York". A label without a usable first
// segment is returned trimmed.
func CityFromLabel(label string) string {
	first, _, _ := strings.Cut(label, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return strings.TrimSpace(label)
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
