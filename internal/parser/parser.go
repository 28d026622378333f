package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/vizpath/internal/errors" // Custom errors package
	"github.com/mcncl/vizpath/internal/models"
)

// MaxDepth bounds object/array nesting, matching encoding/json's own limit.
const MaxDepth = 10000

// Parse decodes a single JSON value from reader into a Document. Object
// members keep the order they appear in the input.
func Parse(reader io.Reader) (models.Document, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	root, err := decodeValue(decoder, 0)
	if err != nil {
		return models.Document{}, classify(decoder, err)
	}

	// Anything after the first value other than whitespace is rejected.
	_, err = decoder.Token()
	switch {
	case stderrors.Is(err, io.EOF):
	case err != nil:
		return models.Document{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
	default:
		return models.Document{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}

	return models.NewDocument(root), nil
}

func classify(decoder *json.Decoder, err error) error {
	if stderrors.Is(err, io.EOF) {
		return errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError(
			fmt.Sprintf("unexpected end of JSON input at offset %d", decoder.InputOffset()),
			errors.ErrInvalidJSON,
		)
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// nextToken reads a token. Running out of input inside a container is a
// truncated document, not an empty one.
func nextToken(decoder *json.Decoder, depth int) (json.Token, error) {
	tok, err := decoder.Token()
	if depth > 0 && stderrors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func decodeValue(decoder *json.Decoder, depth int) (models.Value, error) {
	tok, err := nextToken(decoder, depth)
	if err != nil {
		return models.NotFound, err
	}
	return decodeToken(decoder, tok, depth)
}

func decodeToken(decoder *json.Decoder, tok json.Token, depth int) (models.Value, error) {
	switch t := tok.(type) {
	case nil:
		return models.NullValue(), nil
	case bool:
		return models.BoolValue(t), nil
	case json.Number:
		return models.NumberValue(t), nil
	case string:
		return models.StringValue(t), nil
	case json.Delim:
		if depth >= MaxDepth {
			return models.NotFound, errors.NewParsingError(
				fmt.Sprintf("JSON nesting exceeds %d levels", MaxDepth),
				errors.ErrInvalidJSON,
			)
		}
		switch t {
		case '{':
			return decodeObject(decoder, depth+1)
		case '[':
			return decodeArray(decoder, depth+1)
		}
	}
	return models.NotFound, errors.NewParsingError(
		fmt.Sprintf("unexpected token %v at offset %d", tok, decoder.InputOffset()),
		errors.ErrInvalidJSON,
	)
}

func decodeObject(decoder *json.Decoder, depth int) (models.Value, error) {
	obj := models.NewObject(0)
	for decoder.More() {
		keyTok, err := nextToken(decoder, depth)
		if err != nil {
			return models.NotFound, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return models.NotFound, errors.NewParsingError(
				fmt.Sprintf("object key is not a string at offset %d", decoder.InputOffset()),
				errors.ErrInvalidJSON,
			)
		}
		val, err := decodeValue(decoder, depth)
		if err != nil {
			return models.NotFound, err
		}
		obj.Set(key, val)
	}
	// Closing '}'
	if _, err := nextToken(decoder, depth); err != nil {
		return models.NotFound, err
	}
	return models.ObjectValue(obj), nil
}

func decodeArray(decoder *json.Decoder, depth int) (models.Value, error) {
	arr := models.JSONArray{}
	for decoder.More() {
		val, err := decodeValue(decoder, depth)
		if err != nil {
			return models.NotFound, err
		}
		arr = append(arr, val)
	}
	// Closing ']'
	if _, err := nextToken(decoder, depth); err != nil {
		return models.NotFound, err
	}
	return models.ArrayValue(arr...), nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Document, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseBytes parses JSON from a byte slice
func ParseBytes(data []byte) (models.Document, error) {
	return ParseString(string(data))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}
