package task

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasks-go/internal/utils"
)

const (
	inputSchemaURL = "https://github.com/nibzard/tasks-go/schema/input.schema.json"
	storeSchemaURL = "https://github.com/nibzard/tasks-go/schema/store.schema.json"
)

var (
	//go:embed schema/input.schema.json
	inputSchemaJSON string

	//go:embed schema/store.schema.json
	storeSchemaJSON string
)

var (
	schemaOnce  sync.Once
	inputSchema *jsonschema.Schema
	storeSchema *jsonschema.Schema
	schemaErr   error
)

// schemas compiles the embedded schemas on first use. They ship with the
// binary, so a compile failure is a build defect and panics.
func schemas() (input, store *jsonschema.Schema) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(inputSchemaURL, strings.NewReader(inputSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add input schema: %w", err)
			return
		}
		if err := compiler.AddResource(storeSchemaURL, strings.NewReader(storeSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add store schema: %w", err)
			return
		}
		if inputSchema, schemaErr = compiler.Compile(inputSchemaURL); schemaErr != nil {
			return
		}
		storeSchema, schemaErr = compiler.Compile(storeSchemaURL)
	})
	if schemaErr != nil {
		panic(fmt.Sprintf("compile embedded task schema: %v", schemaErr))
	}
	return inputSchema, storeSchema
}

// Validate checks raw form input. On failure the returned error is a
// FieldErrors.
func Validate(raw RawInput) (Validated, error) {
	input, _ := schemas()
	if err := input.Validate(raw.document()); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return Validated{}, fmt.Errorf("validate task input: %w", err)
		}
		return Validated{}, fieldErrors(ve)
	}
	return Validated{
		Title:       raw.Title,
		Description: raw.Description,
		Status:      *raw.Status,
	}, nil
}

// document builds the JSON value the input schema is checked against.
// A nil Status is left out so "required" catches it.
func (r RawInput) document() map[string]interface{} {
	doc := map[string]interface{}{
		FieldTitle:       r.Title,
		FieldDescription: r.Description,
	}
	if r.Status != nil {
		doc[FieldStatus] = *r.Status
	}
	return doc
}

func fieldErrors(ve *jsonschema.ValidationError) FieldErrors {
	fe := FieldErrors{}
	for _, leaf := range leafErrors(ve, nil) {
		field := utils.FirstPathSegment(utils.JSONPointerToPath(leaf.InstanceLocation))
		if field == "" && strings.HasSuffix(leaf.KeywordLocation, "/required") {
			for _, missing := range quotedNames(leaf.Message) {
				fe.Add(missing, fieldMessage(missing, leaf.Message))
			}
			continue
		}
		fe.Add(field, fieldMessage(field, leaf.Message))
	}
	return fe
}

func fieldMessage(field, fallback string) string {
	switch field {
	case FieldTitle:
		return MsgTitleRequired
	case FieldStatus:
		return MsgStatusRequired
	case FieldDescription:
		return MsgDescriptionInvalid
	default:
		return fallback
	}
}

func leafErrors(ve *jsonschema.ValidationError, out []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if ve == nil {
		return out
	}
	if len(ve.Causes) == 0 {
		return append(out, ve)
	}
	for _, cause := range ve.Causes {
		out = leafErrors(cause, out)
	}
	return out
}

// quotedNames extracts 'name' tokens from a schema message such as
// "missing properties: 'title', 'status'".
func quotedNames(msg string) []string {
	parts := strings.Split(msg, "'")
	var names []string
	for i := 1; i < len(parts); i += 2 {
		if parts[i] != "" {
			names = append(names, parts[i])
		}
	}
	return names
}

// validateStoreDocument checks a decoded stored value against the record
// schema. The returned error joins one *ValidationError per problem.
func validateStoreDocument(doc interface{}) error {
	_, store := schemas()
	err := store.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var errs []error
	for _, leaf := range leafErrors(ve, nil) {
		errs = append(errs, &ValidationError{
			Path: utils.JSONPointerToPath(leaf.InstanceLocation),
			Err:  errors.New(leaf.Message),
		})
	}
	return errors.Join(errs...)
}

// checkUniqueIDs rejects sequences where two tasks share an ID.
func checkUniqueIDs(tasks []Task) error {
	seen := make(map[string]int, len(tasks))
	var errs []error
	for i, t := range tasks {
		if first, ok := seen[t.ID]; ok {
			errs = append(errs, &ValidationError{
				Path: fmt.Sprintf("[%d].id", i),
				Err:  fmt.Errorf("duplicate id %q (first seen at [%d])", t.ID, first),
			})
			continue
		}
		seen[t.ID] = i
	}
	return errors.Join(errs...)
}
