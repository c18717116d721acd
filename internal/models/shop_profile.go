package models

import "time"

// ShopProfileID is the fixed document id of the singleton shop profile.
const ShopProfileID = "shop-profile"

// ShopProfile holds the details printed on every invoice.
type ShopProfile struct {
	ID        string    `json:"-" bson:"_id"`
	ShopName  string    `json:"shopName" bson:"shopName"`
	ShopPhone string    `json:"shopPhone" bson:"shopPhone"`
	LogoURL   string    `json:"logoUrl" bson:"logoUrl"` // image URL or base64 data URI
	CreatedAt time.Time `json:"createdAt,omitzero" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero" bson:"updatedAt"`
}
