package materials

// CreateMaterialRequest carries one upload: title and category plus either
// inline text (IsText) or a fully buffered file payload.
type CreateMaterialRequest struct {
	Title       string
	Category    string
	IsText      bool
	TextContent string
	FileName    string // original client filename, possibly mis-encoded
	Data        []byte
}

// UpdateMaterialRequest carries an edit. Title and Category replace the
// stored values; Content is applied only when non-empty and is the only way
// a text post's body may change. Type, URL and PublicID are never editable.
type UpdateMaterialRequest struct {
	Title    string
	Category string
	Content  string
}
