package domain

import "time"

type RoomType string

const (
	RoomEntirePlace RoomType = "entire_place"
	RoomPrivate     RoomType = "private_room"
	RoomShared      RoomType = "shared_room"
)

func ParseRoomType(s string) (RoomType, bool) {
	switch RoomType(s) {
	case RoomEntirePlace, RoomPrivate, RoomShared:
		return RoomType(s), true
	default:
		return "", false
	}
}

// Property is a listing. Price is the nightly rate in minor currency units
// (kobo); all money in the system is integer minor units.
type Property struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Price       int64     `json:"price"`
	Guests      int       `json:"guests"`
	RoomType    RoomType  `json:"room_type"`
	Amenities   []string  `json:"amenities"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PropertyFilter mirrors the search surface of the listing page: free-text
// query over title/location plus structured filters, all optional.
type PropertyFilter struct {
	Query     string
	Location  string
	PriceMin  int64
	PriceMax  int64
	Guests    int
	Amenities []string
	RoomType  string
	Sort      string // relevance, price_asc, price_desc, rating
	Limit     int
	Offset    int
}
