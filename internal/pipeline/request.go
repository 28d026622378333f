package pipeline

import (
	stderrors "errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/vizpath/internal/chart"
	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/validate"
)

// Request describes one chart: which roots to extract, which parameters to
// flatten and how the result will be drawn.
type Request struct {
	Name      string           `yaml:"name" json:"name,omitempty"`
	GraphType string           `yaml:"graph_type" json:"graph_type" validate:"required,graphtype"`
	Roots     []models.RootKey `yaml:"roots" json:"roots,omitempty" validate:"dive"`
	Params    []string         `yaml:"params" json:"params" validate:"dive,required"`
}

// Result is the outcome of a request. Reason is empty when the rows can be
// drawn, in which case Chart is set. Error is only used by Batch for
// requests that could not run.
type Result struct {
	Name      string           `json:"name,omitempty"`
	GraphType string           `json:"graph_type"`
	Roots     []models.RootKey `json:"roots,omitempty"`
	Params    []string         `json:"params"`
	Rows      models.Dataset   `json:"rows"`
	Reason    string           `json:"reason,omitempty"`
	Chart     *chart.Chart     `json:"chart,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Valid reports whether the rows can be drawn.
func (r Result) Valid() bool { return r.Reason == "" && r.Error == "" }

// Err returns the validation failure as an error.
func (r Result) Err() error {
	if r.Reason == "" {
		return nil
	}
	return errors.NewValidationError(r.Reason, errors.ErrInvalidDataset)
}

// BatchFile is the YAML layout of a batch of requests.
type BatchFile struct {
	Requests []Request `yaml:"requests"`
}

// LoadRequests reads a batch file.
func LoadRequests(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("requests file '%s' not found", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to read requests file '%s'", path), err)
	}

	var file BatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewRequestError("failed to parse requests file", err)
	}
	if len(file.Requests) == 0 {
		return nil, errors.NewRequestError(fmt.Sprintf("requests file '%s' has no requests", path), errors.ErrInvalidRequest)
	}
	return file.Requests, nil
}

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator(registry *validate.Registry) *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	err := v.RegisterValidation("graphtype", func(fl validator.FieldLevel) bool {
		return registry.Known(fl.Field().String())
	})
	if err != nil {
		// Only a malformed tag name fails here.
		panic(fmt.Sprintf("pipeline: registering request rules: %v", err))
	}
	return &requestValidator{validate: v}
}

func (rv *requestValidator) check(req Request) error {
	err := rv.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewRequestError("invalid request", err)
	}

	sentinel := errors.ErrInvalidRequest
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "graphtype":
			sentinel = errors.ErrUnknownGraph
			messages = append(messages, fmt.Sprintf("unknown graph type %q", fe.Value()))
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldPath(fe)))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s", fieldPath(fe), fe.Tag()))
		}
	}

	label := req.Name
	if label == "" {
		label = "request"
	}
	return errors.NewRequestError(fmt.Sprintf("%s: %s", label, strings.Join(messages, "; ")), sentinel)
}

// fieldPath drops the struct name from the validator's namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
