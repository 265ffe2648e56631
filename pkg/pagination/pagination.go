package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds page/limit pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Meta is the pagination block attached to list responses.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// Normalize enforces sane page and limit values.
func Normalize(p Params) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	norm := Normalize(p)
	return (norm.Page - 1) * norm.Limit
}

// NewMeta builds the response metadata for a total row count.
func NewMeta(p Params, total int64) Meta {
	norm := Normalize(p)
	pages := int((total + int64(norm.Limit) - 1) / int64(norm.Limit))
	if pages < 1 {
		pages = 1
	}
	return Meta{
		Total: total,
		Page:  norm.Page,
		Limit: norm.Limit,
		Pages: pages,
	}
}
