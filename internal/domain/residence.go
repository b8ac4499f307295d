package domain

import "errors"

var ErrNotFound = errors.New("not found")

type Residence struct {
	ID          string   `json:"id" yaml:"id" bson:"_id"`
	Name        string   `json:"name" yaml:"name" bson:"name"`
	Description string   `json:"description" yaml:"description" bson:"description"`
	Price       string   `json:"price" yaml:"price" bson:"price"` // display only, never parsed
	Image       string   `json:"image" yaml:"image" bson:"image"`
	SubImages   []string `json:"subImages,omitempty" yaml:"subImages,omitempty" bson:"subImages,omitempty"`
	Features    Features `json:"features" yaml:"features" bson:"features"`
	Location    string   `json:"location" yaml:"location" bson:"location"`
	Sold        bool     `json:"sold,omitempty" yaml:"sold,omitempty" bson:"sold,omitempty"`
}

type Features struct {
	Beds  int `json:"beds" yaml:"beds" bson:"beds"`
	Baths int `json:"baths" yaml:"baths" bson:"baths"`
	Sqft  int `json:"sqft" yaml:"sqft" bson:"sqft"`
}

// Valid reports whether r can be shown: a non-empty id and non-negative features.
func (r Residence) Valid() bool {
	return r.ID != "" && r.Features.Beds >= 0 && r.Features.Baths >= 0 && r.Features.Sqft >= 0
}
