package note

import "time"

// Note is the persisted record. ID duplicates the record key and must match it.
type Note struct {
	ID        string    `json:"id" bson:"id"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Content is the {id, text} view returned by GET /notes/{id}.
type Content struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Info is the timestamp view returned by GET /notes/info/{id}.
type Info struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
