package model

// Page is the envelope returned by the backend's paginated list endpoints.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// Message is the generic {"message": ...} acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
