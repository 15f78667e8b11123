package yaml_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rerades/ai-rules-cli/pkg/yaml"
)

var ruleSchema = []byte(`{
	"type": "object",
	"properties": {
		"id": {"type": "string", "pattern": "^[a-z0-9]+(\\.[a-z0-9-]+)+$"},
		"priority": {"type": "integer", "minimum": 0, "maximum": 100},
		"requires": {
			"type": "array",
			"items": {"type": "string"}
		},
		"meta": {
			"type": "object",
			"properties": {
				"owner": {"type": "string"}
			},
			"required": ["owner"]
		}
	},
	"required": ["id"]
}`)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want string
		err  yaml.Error
	}{
		"with path": {
			err: yaml.Error{
				Err:  errors.New("value is required"),
				Path: yaml.NewPathBuilder().Root().Child("field").Child("subfield").Build(),
			},
			want: "error at $.field.subfield: value is required",
		},
		"without path": {
			err: yaml.Error{
				Err: errors.New("validation error: value is required"),
			},
			want: "validation error: value is required",
		},
		"nil error": {
			err:  yaml.Error{},
			want: "",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestError_AnnotatesSource(t *testing.T) {
	t.Parallel()

	err := yaml.NewError(
		errors.New("bad value"),
		yaml.WithPath(yaml.NewPathBuilder().Root().Child("key").Build()),
		yaml.WithSource([]byte("a: b\nkey: value\nc: d\n")),
	)

	msg := err.Error()
	assert.Contains(t, msg, "error at $.key: bad value")
	assert.Contains(t, msg, "key: value")
}

func TestNewValidator(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		errMsg     string
		schemaData []byte
		wantErr    bool
	}{
		"valid schema": {
			schemaData: ruleSchema,
		},
		"invalid json": {
			schemaData: []byte(`{"invalid": json}`),
			wantErr:    true,
			errMsg:     "unmarshal schema",
		},
		"invalid schema": {
			schemaData: []byte(`{"type": "invalid_type"}`),
			wantErr:    true,
			errMsg:     "compile schema",
		},
		"empty schema": {
			schemaData: []byte(`{}`),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			validator, err := yaml.NewValidator("test", tc.schemaData)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				assert.Nil(t, validator)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, validator)
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	validator := yaml.MustNewValidator("test", ruleSchema)

	tcs := map[string]struct {
		data         any
		expectedPath string
		wantErr      bool
	}{
		"valid data": {
			data: map[string]any{
				"id":       "typescript.conventions",
				"requires": []any{"foundation.test"},
			},
		},
		"missing required field": {
			data:         map[string]any{"priority": 10},
			wantErr:      true,
			expectedPath: "$",
		},
		"invalid id pattern": {
			data:         map[string]any{"id": "NotAnID"},
			wantErr:      true,
			expectedPath: "$.id",
		},
		"invalid array item": {
			data: map[string]any{
				"id":       "a.rule",
				"requires": []any{"b.rule", 123},
			},
			wantErr:      true,
			expectedPath: "$.requires[1]",
		},
		"nested object validation error": {
			data: map[string]any{
				"id":   "a.rule",
				"meta": map[string]any{"notOwner": "x"},
			},
			wantErr:      true,
			expectedPath: "$.meta",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := validator.Validate(tc.data)

			if tc.wantErr {
				require.Error(t, err)

				var validationErr *yaml.Error
				require.ErrorAs(t, err, &validationErr)
				require.NotNil(t, validationErr.Path)
				assert.Equal(t, tc.expectedPath, validationErr.Path.String())
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidator_ValidateBytes(t *testing.T) {
	t.Parallel()

	validator := yaml.MustNewValidator("test", ruleSchema)

	tcs := map[string]struct {
		input   string
		errMsg  string
		wantErr bool
	}{
		"valid document": {
			input: "id: a.rule\npriority: 10\n",
		},
		"priority out of range": {
			input:   "id: a.rule\npriority: 500\n",
			wantErr: true,
			errMsg:  "$.priority",
		},
		"malformed yaml": {
			input:   "id: [a.rule\n",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := validator.ValidateBytes([]byte(tc.input))
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	t.Parallel()

	type doc struct {
		ID       string   `json:"id"`
		Requires []string `json:"requires,omitempty"`
	}

	b, err := yaml.Marshal(doc{ID: "a.rule", Requires: []string{"b.rule"}})
	require.NoError(t, err)
	assert.Equal(t, "id: a.rule\nrequires:\n  - b.rule\n", string(b))

	var got doc
	require.NoError(t, yaml.Unmarshal([]byte("id: c.rule\n"), &got))
	assert.Equal(t, doc{ID: "c.rule"}, got)

	err = yaml.Unmarshal([]byte("id: [\n"), &got)
	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
}
