package domain

// StartBatchRequest is the request body for starting a batch download.
// Nil settings fields fall back to the configured defaults.
type StartBatchRequest struct {
	Destination          string `json:"destination" validate:"required"`
	Posts                []Post `json:"posts" validate:"unique=ID,dive"`
	ApplyLetterboxing    *bool  `json:"apply_letterboxing,omitempty"`
	SaveTags             *bool  `json:"save_tags,omitempty"`
	RemoveTagUnderscores *bool  `json:"remove_tag_underscores,omitempty"`
	EscapeTagParentheses *bool  `json:"escape_tag_parentheses,omitempty"`
}

// Settings merges the request overrides onto defaults.
func (r StartBatchRequest) Settings(defaults Settings) Settings {
	s := defaults
	if r.ApplyLetterboxing != nil {
		s.ApplyLetterboxing = *r.ApplyLetterboxing
	}
	if r.SaveTags != nil {
		s.SaveTags = *r.SaveTags
	}
	if r.RemoveTagUnderscores != nil {
		s.RemoveTagUnderscores = *r.RemoveTagUnderscores
	}
	if r.EscapeTagParentheses != nil {
		s.EscapeTagParentheses = *r.EscapeTagParentheses
	}
	return s
}

// BatchResponse is returned after a batch is accepted.
type BatchResponse struct {
	State DownloadState `json:"state"`
}
