package httpserver

// Static marketing content for the home and detail pages.

type Amenity struct {
	Title       string
	Description string
	Icon        string
}

var amenities = []Amenity{
	{"Infinity Pool", "A stunning private pool overlooking the horizon, perfect for morning laps or sunset relaxation.", "waves"},
	{"Smart Home", "Integrated smart systems for lighting, climate, and entertainment at your fingertips.", "smartphone"},
	{"Gourmet Kitchen", "Fully equipped chef's kitchen with top-of-the-line appliances and spacious island.", "chef-hat"},
	{"Private Garden", "Lush, manicured gardens providing privacy and a serene connection with nature.", "trees"},
	{"Home Cinema", "State-of-the-art projection system and surround sound for the ultimate movie night.", "film"},
	{"Concierge Service", "24/7 dedicated concierge to assist with reservations, transport, and any requests.", "user-check"},
}

var galleryImages = []string{"/1.jpg", "/2.jpg", "/5.jpg", "/7.jpg", "/8.jpg", "/9.jpg"}

var keyFeatures = []string{"Private Pool", "Ocean View", "Smart Home System", "Wine Cellar", "Home Theater", "24/7 Security"}

const (
	contactPhone     = "+66 12 345 6789"
	contactPhoneHref = "tel:+66123456789"
)
