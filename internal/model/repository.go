// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. The `json:"..."` tags control
// how the JSON API serializes them.
package model

// PageSize is the fixed number of repositories requested per listing page.
const PageSize = 10

// Repository is a transient, read-only copy of one repository as returned by
// the listing request. The remote API owns it; we only hold the current page.
type Repository struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"` // empty when the repo has none
	Stars       int    `json:"stars"`
	URL         string `json:"url"`
}

// TotalPages returns ceil(publicRepos / PageSize). Zero repos means zero pages.
func TotalPages(publicRepos int) int {
	if publicRepos <= 0 {
		return 0
	}
	return (publicRepos + PageSize - 1) / PageSize
}
