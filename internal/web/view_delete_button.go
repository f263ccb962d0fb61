package web

// DeleteButtonView holds data for the delete button template fragment
type DeleteButtonView struct {
	URL            string // e.g., "/admin/categories/delete"
	ID             int
	ConfirmMessage string // e.g., "Delete this category?"
	ButtonText     string // e.g., "Delete"
}
