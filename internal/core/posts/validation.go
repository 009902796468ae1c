package posts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/post_patch.schema.json
var postPatchSchemaJSON string

var (
	validate    = newValidator()
	patchSchema = jsonschema.MustCompileString("post_patch.schema.json", postPatchSchemaJSON)
)

// fieldMessages maps "<field>.<rule>" to the message returned to clients
var fieldMessages = map[string]string{
	"text.required":      "Must provide text for the new post",
	"authorIds.required": "authorIds are required",
	"sortBy.oneof":       "Invalid sortBy value",
	"direction.oneof":    "Invalid direction value",
}

// patchMessages maps patch body fields to the message returned on a type mismatch
var patchMessages = map[string]string{
	"text":      "text must be a string",
	"tags":      "tags must be an array of strings",
	"authorIds": "authorIds must be an array of author ids",
}

// newValidator reports fields by their wire names (json tag, then query tag)
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// validateStruct runs struct tag validation and converts the first failure to a ValidationError
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return NewValidationError("request", err.Error())
	}

	fe := fieldErrs[0]
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return NewValidationError(fe.Field(), msg)
	}
	return NewValidationError(fe.Field(), fe.Field()+" failed the "+fe.Tag()+" check")
}

// parseAuthorIDs splits a comma separated list of positive integer IDs
func parseAuthorIDs(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, NewValidationError("authorIds", "authorIds must be a comma separated list of author ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decode parses the raw body, type-checks its fields against the patch schema
// and returns the present ones. JSON null is treated as absent.
func (req UpdatePostRequest) decode() (*postPatch, error) {
	var body patchFields
	if isAbsent(req.Body) || json.Unmarshal(req.Body, &body) != nil {
		return nil, NewValidationError("body", "Request body must be a JSON object")
	}

	doc := make(map[string]interface{}, 3)
	fields := map[string]json.RawMessage{
		"text":      body.Text,
		"tags":      body.Tags,
		"authorIds": body.AuthorIDs,
	}
	for name, raw := range fields {
		if isAbsent(raw) {
			continue
		}
		var v interface{}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, NewValidationError(name, patchMessages[name])
		}
		doc[name] = v
	}

	if err := patchSchema.Validate(doc); err != nil {
		field := schemaErrorField(err)
		if msg, ok := patchMessages[field]; ok {
			return nil, NewValidationError(field, msg)
		}
		return nil, NewValidationError("body", "invalid update body")
	}

	patch := &postPatch{}
	if !isAbsent(body.Text) {
		var text string
		if err := json.Unmarshal(body.Text, &text); err != nil {
			return nil, NewValidationError("text", patchMessages["text"])
		}
		patch.Text = &text
	}
	if !isAbsent(body.Tags) {
		tags := []string{}
		if err := json.Unmarshal(body.Tags, &tags); err != nil {
			return nil, NewValidationError("tags", patchMessages["tags"])
		}
		patch.Tags = &tags
	}
	if !isAbsent(body.AuthorIDs) {
		var numbers []json.Number
		if err := json.Unmarshal(body.AuthorIDs, &numbers); err != nil {
			return nil, NewValidationError("authorIds", patchMessages["authorIds"])
		}
		if len(numbers) == 0 {
			return nil, NewValidationError("authorIds", "authorIds must contain at least one author id")
		}
		ids := make([]int64, 0, len(numbers))
		for _, n := range numbers {
			id, err := n.Int64()
			if err != nil {
				return nil, NewValidationError("authorIds", patchMessages["authorIds"])
			}
			ids = append(ids, id)
		}
		ids = uniqueIDs(ids)
		patch.AuthorIDs = &ids
	}

	return patch, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// schemaErrorField returns the top-level property a schema failure points at
func schemaErrorField(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return ""
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	if i := strings.IndexByte(loc, '/'); i >= 0 {
		loc = loc[:i]
	}
	return loc
}

// uniqueIDs drops repeated IDs, keeping first occurrences in order
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
