package core

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaSet holds the compiled external schema documents for the task record
// shape and the board configuration shape. The schema content is an opaque
// contract; compile failures are carried here and reported by the validator
// instead of aborting the run.
type SchemaSet struct {
	Task     *jsonschema.Schema
	TaskErr  error
	Board    *jsonschema.Schema
	BoardErr error
}

// LoadSchemas compiles task.schema.json and board.schema.json from dir.
func LoadSchemas(dir string) *SchemaSet {
	set := &SchemaSet{}
	set.Task, set.TaskErr = compileSchema(filepath.Join(dir, "task.schema.json"))
	set.Board, set.BoardErr = compileSchema(filepath.Join(dir, "board.schema.json"))
	return set
}

func compileSchema(path string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", path, err)
	}
	return schema, nil
}

// validateAgainst checks a decoded YAML/JSON document against a schema.
// The document is round-tripped through JSON so the schema sees plain
// JSON-shaped values. Returns one message per leaf violation.
func validateAgainst(schema *jsonschema.Schema, doc any) []string {
	data, err := json.Marshal(doc)
	if err != nil {
		return []string{fmt.Sprintf("encoding document for schema validation: %v", err)}
	}
	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return []string{fmt.Sprintf("decoding document for schema validation: %v", err)}
	}
	if err := schema.Validate(obj); err != nil {
		return flattenSchemaError(err)
	}
	return nil
}

func flattenSchemaError(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var msgs []string
	collectLeafCauses(ve, &msgs)
	return msgs
}

func collectLeafCauses(ve *jsonschema.ValidationError, msgs *[]string) {
	if len(ve.Causes) == 0 {
		loc := strings.TrimPrefix(ve.InstanceLocation, "/")
		if loc == "" {
			*msgs = append(*msgs, ve.Message)
			return
		}
		*msgs = append(*msgs, fmt.Sprintf("%s: %s", strings.ReplaceAll(loc, "/", "."), ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectLeafCauses(cause, msgs)
	}
}
