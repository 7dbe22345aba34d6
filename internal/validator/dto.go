package validator

// CreateTaxonomyRequest creates an exam/chapter/class/subject entry. The name
// is trimmed and upper-cased before the uniqueness check.
type CreateTaxonomyRequest struct {
	Name string `json:"name" validate:"required,taxonomy_name"`
}

// RenameTaxonomyRequest renames a taxonomy entry.
type RenameTaxonomyRequest struct {
	Name string `json:"name" validate:"required,taxonomy_name"`
}

// ListQuizzesQuery holds the list endpoint's query parameters.
type ListQuizzesQuery struct {
	Status   string `form:"status" validate:"omitempty,quiz_status"`
	TestType string `form:"testType" validate:"omitempty,test_type"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	Size     int    `form:"size" validate:"omitempty,min=1,max=200"`
}
