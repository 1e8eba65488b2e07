package emlakjet

import (
	"context"
	"fmt"
	"net/url"
)

// Trade types as they appear in the site's URL scheme
const (
	TradeRent = "kiralik"
	TradeSale = "satilik"
)

// searchRequest is the selection query posted to the site's search backend.
// The field lists mirror what the site's own frontend requests.
type searchRequest struct {
	ListingSelectedFields []string `json:"listingSelectedFields"`
	ProjectSelectedFields []string `json:"projectSelectedFields"`
	OtherFields           []string `json:"otherFields"`
	Size                  int      `json:"size"`
	IsProjectSearch       bool     `json:"isProjectSearch"`
	IsListingSearch       bool     `json:"isListingSearch"`
}

func newSearchRequest() searchRequest {
	return searchRequest{
		ListingSelectedFields: []string{
			"id", "title", "imagesFullPath", "estateTypeName", "tradeTypeName",
			"roomCountName", "floorName", "squareMeter", "categoryTypeName",
			"priceDetail.price", "priceDetail.currency", "url", "phoneNumber",
			"quickInfos", "location.coordinate", "badges",
		},
		ProjectSelectedFields: []string{
			"id", "name", "images", "companyName", "area", "flatCount",
			"salesStatus", "price", "url", "coordinates", "badge", "tags",
			"tradeType.name",
		},
		OtherFields:     []string{"url", "searchCriteria", "name"},
		Size:            50000,
		IsListingSearch: true,
	}
}

// apiListing is one row of the selection search response
type apiListing struct {
	ID               int      `json:"id"`
	CategoryTypeName string   `json:"categoryTypeName"`
	TradeTypeName    string   `json:"tradeTypeName"`
	EstateTypeName   string   `json:"estateTypeName"`
	Title            string   `json:"title"`
	URL              string   `json:"url"`
	ImagesFullPath   []string `json:"imagesFullPath"`
	QuickInfos       []struct {
		Key   string `json:"key"`
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"quickInfos"`
	Location *struct {
		Coordinate struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coordinate"`
	} `json:"location"`
	RoomCountName string   `json:"roomCountName"`
	FloorName     string   `json:"floorName"`
	SquareMeter   int      `json:"squareMeter"`
	Badges        []string `json:"badges"`
	PhoneNumber   string   `json:"phoneNumber"`
	PriceDetail   *struct {
		Currency    string  `json:"currency"`
		Price       float64 `json:"price"`
		Opportunity bool    `json:"opportunity"`
	} `json:"priceDetail"`
	Type string `json:"type"`
}

type searchResponse struct {
	SelectionResponse struct {
		AllListings []apiListing `json:"allListings"`
	} `json:"selectionResponse"`
}

// nearbyResponse is the nearby-POI endpoint's payload
type nearbyResponse struct {
	Status string `json:"status"`
	Result []struct {
		CategoryID   int    `json:"categoryId"`
		CategoryKey  string `json:"categoryKey"`
		CategoryName string `json:"categoryName"`
		Poies        []struct {
			ID          int    `json:"id"`
			Name        string `json:"name"`
			Distance    string `json:"distance"`
			Coordinates struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"coordinates"`
		} `json:"poies"`
	} `json:"result"`
}

// search queries the selection backend for one trade type and district
func (s *Source) search(ctx context.Context, tradeType, district string) (*searchResponse, error) {
	path := fmt.Sprintf("/search/v1/selection/%s-konut/%s-%s", tradeType, s.config.City, district)
	query := url.Values{"view_type": {"map"}}
	searchURL := fmt.Sprintf("%s%s?%s", s.config.SearchURL, path, query.Encode())

	var resp searchResponse
	if err := s.client.PostJSON(ctx, searchURL, newSearchRequest(), &resp); err != nil {
		return nil, fmt.Errorf("selection search failed for %s/%s: %w", tradeType, district, err)
	}
	return &resp, nil
}

// fetchNearbyPlaces queries the nearby-POI endpoint for a listing id. The
// category set and limit match what the site's detail page requests.
func (s *Source) fetchNearbyPlaces(ctx context.Context, listingID int) (*nearbyResponse, error) {
	poiURL := fmt.Sprintf("%s/v1/listing/%d/nearby-poi?category=11,2,7,5,8&limit=3", s.config.APIURL, listingID)

	var resp nearbyResponse
	if err := s.client.GetJSON(ctx, poiURL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
