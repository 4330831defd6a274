package model

// Item is something an owner lends out.
//
// The owner is fixed at creation. RequestID is set when the item was created
// in answer to an ItemRequest; it is a weak reference and may become nil if
// the request is deleted.
type Item struct {
	ID          int64  `json:"id"          db:"id"`
	Name        string `json:"name"        db:"name"`
	Description string `json:"description" db:"description"`
	Available   bool   `json:"available"   db:"available"`
	OwnerID     int64  `json:"-"           db:"owner_id"`
	RequestID   *int64 `json:"requestId"   db:"request_id"`
}

// ItemPatch carries a partial update. Nil fields are left untouched.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// ItemDetails is the read view of an item: its comments, plus the owner-only
// last/next booking annotation.
type ItemDetails struct {
	Item
	LastBooking *BookingSummary `json:"lastBooking"`
	NextBooking *BookingSummary `json:"nextBooking"`
	Comments    []Comment       `json:"comments"`
}
