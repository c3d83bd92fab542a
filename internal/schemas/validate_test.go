package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AnalysisShapes(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{name: "structured portfolio", json: `{"portfolio": {"personalInfo": {"name": "Jane"}}, "avatarPrompt": "female engineer"}`},
		{name: "json string draft", json: `{"portfolioDraft": "{\"personalInfo\":{}}", "avatarPrompt": "male designer"}`},
		{name: "palette allowed", json: `{"portfolio": {}, "colorPalette": {"primary": "#112233"}}`},
		{name: "neither shape", json: `{"avatarPrompt": "x"}`, wantErr: true},
		{name: "draft wrong type", json: `{"portfolioDraft": {"personalInfo": {}}}`, wantErr: true},
		{name: "portfolio wrong type", json: `{"portfolio": "text"}`, wantErr: true},
		{name: "not an object", json: `[]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Analysis, tt.json)
			if tt.wantErr {
				var validationErr *ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, Analysis, validationErr.Schema)
				assert.NotEmpty(t, validationErr.Errors)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_PortfolioAllowsNullLists(t *testing.T) {
	err := Validate(Portfolio, `{
		"personalInfo": {"name": "Jane", "socialLinks": null},
		"summary": null,
		"experience": [{"role": "Engineer", "description": null}],
		"skills": null,
		"projects": null
	}`)
	assert.NoError(t, err)
}

func TestValidate_PortfolioRejectsWrongTypes(t *testing.T) {
	err := Validate(Portfolio, `{"personalInfo": {"name": 42}, "skills": "Go, Rust"}`)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	fields := make([]string, 0, len(validationErr.Errors))
	for _, fe := range validationErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "personalInfo.name")
	assert.Contains(t, fields, "skills")
}

func TestValidate_PortfolioRequiresPersonalInfo(t *testing.T) {
	err := Validate(Portfolio, `{"summary": "hi"}`)
	assert.Error(t, err)
}

func TestValidate_NotJSON(t *testing.T) {
	err := Validate(ParsedResume, `<html>not json</html>`)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidate_EditedResume(t *testing.T) {
	assert.NoError(t, Validate(EditedResume, `{"newHtmlContent": "<p>x</p>", "response": "Done!"}`))
	assert.Error(t, Validate(EditedResume, `{"newHtmlContent": "", "response": "Done!"}`))
	assert.Error(t, Validate(EditedResume, `{"response": "Done!"}`))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", `{}`)

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "missing.schema.json", loadErr.Path)
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"personalInfo": {"name": "Jane"}}`), 0644))

	assert.NoError(t, ValidateFile(Portfolio, path))
	assert.Error(t, ValidateFile(Portfolio, filepath.Join(t.TempDir(), "nope.json")))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["id"], "properties": {"id": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"id": "abc"}`))

	err := ValidateJSONString(schema, `{"id": 1}`)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Error(), "id")

	err = ValidateJSONString(`{not a schema`, `{}`)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}
