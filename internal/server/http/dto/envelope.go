package dto

// Envelope wraps every JSON response.
type Envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       any                 `json:"data,omitempty"`
	Error      string              `json:"error,omitempty"`
	Kind       string              `json:"kind,omitempty"`
	Errors     map[string]string   `json:"errors,omitempty"`
	Pagination *PaginationResponse `json:"pagination,omitempty"`
}

// PaginationResponse locates a page in a listing.
type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}
