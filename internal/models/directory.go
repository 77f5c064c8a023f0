package models

// Directory is a named folder in a user's lesson tree.
// Each user has exactly one root directory (IsRoot, nil ParentID); every
// other directory has a parent and the parent chain ends at the root.
type Directory struct {
	ID       int64
	OwnerID  int64
	ParentID *int64
	Name     string
	IsRoot   bool
}

// BreadcrumbEntry is one step of a directory path, root first
type BreadcrumbEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
