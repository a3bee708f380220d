package materials

// TypeText marks a material that carries inline text instead of a stored blob.
const TypeText = "text"

// Material is a single managed content item: either an inline text post or a
// reference to a blob held by an external store. Exactly one of Content and
// URL is set; a set URL is always paired with the PublicID needed to delete
// the blob later.
type Material struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	CreatedAt int64  `json:"createdAt"` // milliseconds since epoch
	Type      string `json:"type"`      // "text" or a file-format token such as "pdf"
	Content   string `json:"content,omitempty"`
	URL       string `json:"url,omitempty"`
	PublicID  string `json:"public_id,omitempty"`
}

// IsText reports whether the material is an inline text post.
func (m *Material) IsText() bool {
	return m.Type == TypeText
}
