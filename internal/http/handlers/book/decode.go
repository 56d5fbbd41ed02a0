package book

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aanand-mishra/books-api/internal/errcodes"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pkg/errors"
)

const maxBodyBytes = 1 << 20

// validate is shared by all handlers; a *validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// notblank rejects "", "   " and other whitespace-only strings.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(errors.Wrap(err, "register notblank validation"))
	}
	return v
}

// readBody returns the raw request body, capped at maxBodyBytes.
// An empty or whitespace-only body reads as an empty JSON object.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errcodes.MalformedPayload(fmt.Sprintf("request body must not be larger than %d bytes", maxBodyBytes))
		}
		return nil, errors.Wrap(err, "read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

// readInput decodes a create or replace body into a BookInput.
func readInput(w http.ResponseWriter, r *http.Request) (types.BookInput, error) {
	body, err := readBody(w, r)
	if err != nil {
		return types.BookInput{}, err
	}

	input, err := types.DecodeBookInput(body)
	if err != nil {
		return types.BookInput{}, decodeError(err)
	}
	return input, nil
}

// readPatch decodes a PATCH body into a BookPatch.
func readPatch(w http.ResponseWriter, r *http.Request) (types.BookPatch, error) {
	body, err := readBody(w, r)
	if err != nil {
		return types.BookPatch{}, err
	}

	patch, err := types.DecodeBookPatch(body)
	if err != nil {
		return types.BookPatch{}, decodeError(err)
	}
	return patch, nil
}

func decodeError(err error) error {
	var fieldErr *types.FieldTypeError
	if errors.As(err, &fieldErr) || errors.Is(err, types.ErrNotObject) {
		return errcodes.MalformedPayload(err.Error())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errcodes.MalformedPayload("request body contains malformed JSON")
	}

	return errcodes.MalformedPayload(err.Error())
}
