package queue

// Routing keys for platform events.
const (
	KeyUserRegistered   = "user.registered"
	KeyListingSubmitted = "listing.submitted"
	KeyListingModerated = "listing.moderated"
)

type UserRegistered struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ListingSubmitted fires when a new listing enters the moderation queue.
type ListingSubmitted struct {
	ListingID string `json:"listing_id"`
	UserRef   string `json:"user_ref"`
	Name      string `json:"name"`
}

// ListingModerated fires when an admin changes a listing's approval status.
type ListingModerated struct {
	ListingID string `json:"listing_id"`
	Status    string `json:"status"`
	AdminID   string `json:"admin_id"`
}
