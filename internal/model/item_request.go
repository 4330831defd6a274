package model

import "time"

// ItemRequest is a standing ask for an item nobody lists yet.
//
// Items is never stored; it is filled on read with every item whose
// RequestID points here. A request with at least one item is considered
// answered.
type ItemRequest struct {
	ID          int64     `json:"id"          db:"id"`
	Description string    `json:"description" db:"description"`
	RequesterID int64     `json:"-"           db:"requester_id"`
	Created     time.Time `json:"created"     db:"-"`
	Items       []Item    `json:"items"       db:"-"`
}
