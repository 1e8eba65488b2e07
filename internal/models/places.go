package models

// NearbyPlace is one point of interest near a property listing
type NearbyPlace struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Distance    string    `json:"distance"`
	Coordinates *Location `json:"coordinates,omitempty"`
}

// NearbyCategory groups nearby points of interest by category (schools,
// hospitals, transit and so on), as returned by the property source's
// nearby-POI endpoint.
type NearbyCategory struct {
	CategoryID   int           `json:"category_id"`
	CategoryKey  string        `json:"category_key"`
	CategoryName string        `json:"category_name"`
	Places       []NearbyPlace `json:"places"`
}
