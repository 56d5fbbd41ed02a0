// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Book represents a book record held by the store.
//
// Year and ISBN are optional. They are pointers so an absent value is
// omitted from the JSON body instead of being rendered as 0 or "".
type Book struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"  validate:"notblank"`
	Author string  `json:"author" validate:"notblank"`
	Year   *int    `json:"year,omitempty"`
	ISBN   *string `json:"isbn,omitempty"`
}

// Clone returns a copy of b that shares no pointers with it.
func (b Book) Clone() Book {
	if b.Year != nil {
		year := *b.Year
		b.Year = &year
	}
	if b.ISBN != nil {
		isbn := *b.ISBN
		b.ISBN = &isbn
	}
	return b
}

// BookInput is the payload accepted by create (POST) and replace (PUT).
// Any "id" sent by the client is ignored; the store owns ids.
type BookInput struct {
	Title  string  `json:"title"  validate:"notblank"`
	Author string  `json:"author" validate:"notblank"`
	Year   *int    `json:"year"`
	ISBN   *string `json:"isbn"`
}

// Book builds a Book with the given id from the input fields.
func (in BookInput) Book(id int64) Book {
	return Book{
		ID:     id,
		Title:  in.Title,
		Author: in.Author,
		Year:   in.Year,
		ISBN:   in.ISBN,
	}
}

// Field is one entry of a partial update: either absent, or set to Value.
type Field[T any] struct {
	Set   bool
	Value T
}

// Apply overwrites *dst with the field value when the field is set.
func (f Field[T]) Apply(dst *T) {
	if f.Set {
		*dst = f.Value
	}
}

// BookPatch is the decoded body of a PATCH request.
//
// A key that is missing, null, or carries a value of the wrong JSON type
// (e.g. "year": "1965") decodes to an absent field and leaves the stored
// value untouched.
type BookPatch struct {
	Title  Field[string]
	Author Field[string]
	Year   Field[int]
	ISBN   Field[string]
}

// ErrNotObject is returned when a body is valid JSON but not an object.
var ErrNotObject = errors.New("request body must be a JSON object")

// FieldTypeError reports a create or replace body whose field holds a
// value of the wrong JSON type.
type FieldTypeError struct {
	Field string
	Type  string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q must be of type %s", e.Field, e.Type)
}

// decodeObject unmarshals data into its top-level keys. Keys are matched
// exactly, so "Title" and "title" are different keys. A literal null
// yields a nil map.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotObject
		}
		return nil, err
	}
	return raw, nil
}

// lookup returns the value stored under key. A null value counts as missing.
func lookup(raw map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	msg, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return nil, false
	}
	return msg, true
}

func asString(msg json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return "", false
	}
	return s, true
}

// asInt accepts any JSON number with an integral value, so 1965, 1965.0
// and 1.965e3 all decode to 1965.
func asInt(msg json.RawMessage) (int, bool) {
	msg = bytes.TrimSpace(msg)
	// json.Number also accepts quoted numbers.
	if len(msg) == 0 || msg[0] == '"' {
		return 0, false
	}

	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		if i < math.MinInt || i > math.MaxInt {
			return 0, false
		}
		return int(i), true
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

// DecodeBookInput decodes a create or replace body. Missing or null keys
// leave the field at its zero value for validation to reject; a value of
// the wrong JSON type is a *FieldTypeError.
func DecodeBookInput(data []byte) (BookInput, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return BookInput{}, err
	}

	var in BookInput
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"title", &in.Title},
		{"author", &in.Author},
	} {
		if msg, ok := lookup(raw, f.key); ok {
			s, ok := asString(msg)
			if !ok {
				return BookInput{}, &FieldTypeError{Field: f.key, Type: "string"}
			}
			*f.dst = s
		}
	}

	if msg, ok := lookup(raw, "year"); ok {
		year, ok := asInt(msg)
		if !ok {
			return BookInput{}, &FieldTypeError{Field: "year", Type: "int"}
		}
		in.Year = &year
	}

	if msg, ok := lookup(raw, "isbn"); ok {
		isbn, ok := asString(msg)
		if !ok {
			return BookInput{}, &FieldTypeError{Field: "isbn", Type: "string"}
		}
		in.ISBN = &isbn
	}

	return in, nil
}

// DecodeBookPatch decodes a PATCH body. Only a syntactically invalid body
// or a non-object body is an error; field-level type mismatches are not.
func DecodeBookPatch(data []byte) (BookPatch, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return BookPatch{}, err
	}
	if raw == nil {
		return BookPatch{}, ErrNotObject
	}

	return BookPatch{
		Title:  field(raw, "title", asString),
		Author: field(raw, "author", asString),
		Year:   field(raw, "year", asInt),
		ISBN:   field(raw, "isbn", asString),
	}, nil
}

func field[T any](raw map[string]json.RawMessage, key string, decode func(json.RawMessage) (T, bool)) Field[T] {
	msg, ok := lookup(raw, key)
	if !ok {
		return Field[T]{}
	}

	v, ok := decode(msg)
	if !ok {
		return Field[T]{}
	}
	return Field[T]{Set: true, Value: v}
}

// ApplyTo merges the set fields of p into a copy of b and returns it.
// The id is never touched.
func (p BookPatch) ApplyTo(b Book) Book {
	p.Title.Apply(&b.Title)
	p.Author.Apply(&b.Author)
	if p.Year.Set {
		year := p.Year.Value
		b.Year = &year
	}
	if p.ISBN.Set {
		isbn := p.ISBN.Value
		b.ISBN = &isbn
	}
	return b
}
