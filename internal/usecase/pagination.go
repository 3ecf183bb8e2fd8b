package usecase

// PageRequest is the paging part of a list request. Page is 1-based; nil
// fields take the configured defaults.
type PageRequest struct {
	Page  *int
	Limit *int
	Sort  string
}

// PageInfo echoes the resolved paging back to the caller.
type PageInfo struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Sort  string `json:"sort"`
}
