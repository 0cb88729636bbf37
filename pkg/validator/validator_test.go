package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewLike struct {
	Rating  int      `json:"rating" validate:"required,min=1,max=5"`
	Title   string   `json:"title" validate:"required,max=10"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Photos  []string `json:"photos" validate:"max=2"`
	Status  string   `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	Website string   `validate:"omitempty,url"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	err := Validate(reviewLike{Rating: 4, Title: "Great"})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	fields := fieldsOf(t, Validate(reviewLike{}))
	assert.Equal(t, "is required", fields["rating"])
	assert.Equal(t, "is required", fields["title"])
}

func TestValidate_FallsBackToGoFieldName(t *testing.T) {
	fields := fieldsOf(t, Validate(reviewLike{Rating: 1, Title: "x", Website: "nope"}))
	assert.Equal(t, "must be a valid URL", fields["Website"])
}

func TestValidate_NumericBounds(t *testing.T) {
	fields := fieldsOf(t, Validate(reviewLike{Rating: 6, Title: "ok"}))
	assert.Equal(t, "must be at most 5", fields["rating"])
}

func TestValidate_StringAndSliceBounds(t *testing.T) {
	fields := fieldsOf(t, Validate(reviewLike{
		Rating: 3,
		Title:  "far too long a title",
		Photos: []string{"a", "b", "c"},
	}))
	assert.Equal(t, "must be at most 10 characters", fields["title"])
	assert.Equal(t, "must contain at most 2 items", fields["photos"])
}

func TestValidate_EmailAndOneOf(t *testing.T) {
	fields := fieldsOf(t, Validate(reviewLike{Rating: 3, Title: "ok", Email: "bad", Status: "deleted"}))
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Contains(t, fields["status"], "one of")
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(reviewLike{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'rating'")
	assert.Contains(t, err.Error(), "is required")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"rating":5,"title":"Lovely"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var s reviewLike
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	require.NoError(t, err)
	assert.Equal(t, 5, s.Rating)
	assert.Equal(t, "Lovely", s.Title)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var s reviewLike
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Contains(t, err.Error(), "invalid request body")
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":0}`))

	var s reviewLike
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestDecodeAndValidate_BodyTooLarge(t *testing.T) {
	big := `{"title":"` + strings.Repeat("a", MaxBodyBytes+10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))

	var s reviewLike
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	var decErr *DecodeError
	assert.ErrorAs(t, err, &decErr)
}
