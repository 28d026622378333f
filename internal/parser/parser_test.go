package parser

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/models"
)

func TestParse_SimpleObject(t *testing.T) {
	jsonStr := `{"name": "John Doe", "age": 30, "isStudent": false, "city": null}`
	doc, err := Parse(strings.NewReader(jsonStr))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	if doc.RootIsArray {
		t.Errorf("Parse() doc.RootIsArray = true, want false for an object")
	}

	expectedRoot := map[string]any{
		"name":      "John Doe",
		"age":       json.Number("30"),
		"isStudent": false,
		"city":      nil,
	}
	if !reflect.DeepEqual(doc.Root.ToAny(), expectedRoot) {
		t.Errorf("Parse() root = %v, want %v", doc.Root.ToAny(), expectedRoot)
	}
}

func TestParse_PreservesMemberOrder(t *testing.T) {
	doc, err := ParseString(`{"zeta": 1, "alpha": {"y": 2, "b": 3}, "mid": []}`)
	if err != nil {
		t.Fatalf("ParseString() error = %v, wantErr nil", err)
	}

	obj := doc.Root.Object()
	if obj == nil {
		t.Fatalf("Parse() root is not an object, got %s", doc.Root.Kind())
	}
	if got := obj.Keys(); !reflect.DeepEqual(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("root keys = %v, want document order", got)
	}
	alpha, _ := obj.Get("alpha")
	if got := alpha.Object().Keys(); !reflect.DeepEqual(got, []string{"y", "b"}) {
		t.Errorf("nested keys = %v, want document order", got)
	}
	if got := doc.Root.String(); got != `{"zeta":1,"alpha":{"y":2,"b":3},"mid":[]}` {
		t.Errorf("re-encoded root = %s", got)
	}
}

func TestParse_SimpleArray(t *testing.T) {
	doc, err := Parse(strings.NewReader(`[1, "test", true, null, 3.14]`))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	if !doc.RootIsArray {
		t.Errorf("Parse() doc.RootIsArray = false, want true for an array")
	}

	expectedRoot := []any{json.Number("1"), "test", true, nil, json.Number("3.14")}
	if !reflect.DeepEqual(doc.Root.ToAny(), expectedRoot) {
		t.Errorf("Parse() root = %v, want %v", doc.Root.ToAny(), expectedRoot)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if err == nil {
		t.Fatalf("Parse() with empty reader, err = nil, want error")
	}
	if !stderrors.Is(err, errors.ErrEmptyInput) {
		t.Errorf("Parse() with empty reader, err = %v, want ErrEmptyInput", err)
	}
}

func TestParseString_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := ParseString(input)
		if err == nil {
			t.Errorf("ParseString(%q) err = nil, want error", input)
			continue
		}
		if !strings.Contains(err.Error(), "input string is empty") {
			t.Errorf("ParseString(%q) err = %v, want error containing 'input string is empty'", input, err)
		}
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	testCases := []struct {
		name    string
		jsonStr string
	}{
		{"MissingClosingBrace", `{"name": "John Doe", "age": 30`},
		{"MissingClosingBracket", `["item1", "item2",`},
		{"OpenBraceOnly", `{`},
		{"BareWord", `{"invalid": json}`},
		{"TrailingComma", `[1, 2,]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.jsonStr)
			if err == nil {
				t.Fatalf("ParseString() with malformed JSON, err = nil, want error")
			}
			if stderrors.Is(err, errors.ErrEmptyInput) {
				t.Errorf("ParseString() reported truncated input as empty: %v", err)
			}
			var appErr *errors.AppError
			if !stderrors.As(err, &appErr) || appErr.Type != errors.ErrorTypeParsing {
				t.Errorf("ParseString() err = %v, want a parsing AppError", err)
			}
		})
	}
}

func TestParse_MultipleValues(t *testing.T) {
	_, err := ParseString(`{"a": 1} {"b": 2}`)
	if !stderrors.Is(err, errors.ErrMultipleJSON) {
		t.Errorf("ParseString() err = %v, want ErrMultipleJSON", err)
	}

	if _, err := ParseString("{\"a\": 1}\n\n  "); err != nil {
		t.Errorf("ParseString() with trailing whitespace err = %v, want nil", err)
	}
}

func TestParseFile_SimpleObject(t *testing.T) {
	content := `{"product": "Laptop", "price": 1200.50}`
	tmpfile, err := os.CreateTemp("", "test_simple_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name()) // clean up

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	doc, err := ParseFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("ParseFile() error = %v, wantErr nil", err)
	}

	price, ok := doc.Root.Object().Get("price")
	if !ok {
		t.Fatalf("ParseFile() root has no price member")
	}
	if n, _ := price.Num(); n != json.Number("1200.50") {
		t.Errorf("price = %q, want the literal 1200.50", n)
	}
}

func TestParseFile_NonExistentFile(t *testing.T) {
	_, err := ParseFile("nonexistentfile.json")
	if !stderrors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("ParseFile() with non-existent file, err = %v, want ErrFileNotFound", err)
	}
}

func TestParseFile_EmptyPath(t *testing.T) {
	_, err := ParseFile("")
	if err == nil || !strings.Contains(err.Error(), "file path is empty") {
		t.Errorf("ParseFile() with empty path, err = %v, want error containing 'file path is empty'", err)
	}
}

func TestParseFile_EmptyFileContent(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_empty_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name()) // clean up

	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	_, err = ParseFile(tmpfile.Name())
	if !stderrors.Is(err, errors.ErrFileEmpty) {
		t.Errorf("ParseFile() with empty file content, err = %v, want ErrFileEmpty", err)
	}
}

func TestParse_RootPrimitives(t *testing.T) {
	testCases := []struct {
		name         string
		jsonStr      string
		expectedKind models.Kind
		expectedText string
	}{
		{"RootString", `"hello world"`, models.String, "hello world"},
		{"RootNumber", `123.45`, models.Number, "123.45"},
		{"RootBooleanTrue", `true`, models.Bool, "true"},
		{"RootBooleanFalse", `false`, models.Bool, "false"},
		{"RootNull", `null`, models.Null, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tc.jsonStr))
			if err != nil {
				t.Fatalf("Parse() error = %v, wantErr nil for %s", err, tc.name)
			}
			if doc.RootIsArray {
				t.Errorf("Parse() doc.RootIsArray = true for %s", tc.name)
			}
			if doc.Root.Kind() != tc.expectedKind {
				t.Errorf("Parse() root kind = %s, want %s", doc.Root.Kind(), tc.expectedKind)
			}
			if doc.Root.Text() != tc.expectedText {
				t.Errorf("Parse() root text = %q, want %q", doc.Root.Text(), tc.expectedText)
			}
		})
	}
}
