// Package validation provides typed form validation for user-submitted content.
package validation

import (
	"sort"
	"strings"
)

// FieldErrors maps a form field name to its validation message. Handlers
// return it alongside the submitted values so the form can be redisplayed.
type FieldErrors map[string]string

// Error joins the field messages into a single string, fields sorted for
// deterministic output.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(e))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// PostForm carries the user-editable fields of a post submission.
type PostForm struct {
	Text    string `form:"text" json:"text"`
	GroupID *uint  `form:"group" json:"group_id,omitempty"`
	Image   string `json:"image,omitempty"`
}

// Validate checks the required fields. Group existence is a foreign-key
// choice check done by the handler against the store.
func (f PostForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Text) == "" {
		errs["text"] = "This field is required"
	}
	return errs
}

// CommentForm carries the user-editable fields of a comment submission.
type CommentForm struct {
	Text string `form:"text" json:"text"`
}

// Validate checks the required fields.
func (f CommentForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Text) == "" {
		errs["text"] = "This field is required"
	}
	return errs
}
