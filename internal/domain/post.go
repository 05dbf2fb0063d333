package domain

// Post describes a remote image resource. ResourceURL is empty when the post
// cannot be downloaded.
type Post struct {
	ID          int64    `json:"id" validate:"gte=0"`
	ResourceURL string   `json:"resource_url,omitempty" validate:"omitempty,resource_url"`
	Tags        []string `json:"tags,omitempty" validate:"dive,required"`
}

// Downloadable reports whether the post carries a resource URL.
func (p Post) Downloadable() bool {
	return p.ResourceURL != ""
}

// Settings controls the optional post-processing applied by a batch.
// A batch captures its Settings when it starts.
type Settings struct {
	ApplyLetterboxing    bool `json:"apply_letterboxing"`
	SaveTags             bool `json:"save_tags"`
	RemoveTagUnderscores bool `json:"remove_tag_underscores"`
	EscapeTagParentheses bool `json:"escape_tag_parentheses"`
}
