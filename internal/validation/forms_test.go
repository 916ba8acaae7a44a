package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostFormValidate(t *testing.T) {
	tests := []struct {
		name      string
		form      PostForm
		wantField string
	}{
		{name: "Valid", form: PostForm{Text: "hello"}},
		{name: "EmptyText", form: PostForm{Text: ""}, wantField: "text"},
		{name: "WhitespaceText", form: PostForm{Text: "   \n"}, wantField: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.form.Validate()
			if tt.wantField == "" {
				assert.Empty(t, errs)
			} else {
				assert.Contains(t, errs, tt.wantField)
			}
		})
	}
}

func TestCommentFormValidate(t *testing.T) {
	assert.Empty(t, CommentForm{Text: "nice"}.Validate())
	assert.Contains(t, CommentForm{Text: ""}.Validate(), "text")
	assert.Contains(t, CommentForm{Text: "  "}.Validate(), "text")
}

func TestFieldErrorsError(t *testing.T) {
	errs := FieldErrors{"text": "This field is required", "group": "Select a valid choice"}
	// Deterministic field order.
	assert.Equal(t, "group: Select a valid choice; text: This field is required", errs.Error())
}
