package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema.
// Checked keywords: $ref, properties, required, enum, minimum, maximum.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema map[string]any
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	defs, _ := schema["$defs"].(map[string]any)
	v := schemaVerifier{defs: defs}
	if err := v.check("", schema, configMap); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

type schemaVerifier struct {
	defs map[string]any
}

func (v schemaVerifier) check(path string, node map[string]any, value any) error {
	if ref, ok := node["$ref"].(string); ok {
		resolved, err := v.resolve(ref)
		if err != nil {
			return err
		}
		node = resolved
	}

	if enum, ok := node["enum"].([]any); ok && value != nil {
		found := false
		for _, e := range enum {
			if fmt.Sprint(e) == fmt.Sprint(value) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: value %v is not one of %v", fieldName(path), value, enum)
		}
	}

	if num, ok := value.(float64); ok {
		if minVal, ok := node["minimum"].(float64); ok && num < minVal {
			return fmt.Errorf("%s: value %v is less than minimum %v", fieldName(path), num, minVal)
		}
		if maxVal, ok := node["maximum"].(float64); ok && num > maxVal {
			return fmt.Errorf("%s: value %v is greater than maximum %v", fieldName(path), num, maxVal)
		}
	}

	props, ok := node["properties"].(map[string]any)
	if !ok {
		return nil
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("%s: expected object", fieldName(path))
	}

	if required, ok := node["required"].([]any); ok {
		for _, r := range required {
			key := fmt.Sprint(r)
			if isEmptyValue(obj[key]) {
				return fmt.Errorf("%s is required", fieldName(joinPath(path, key)))
			}
		}
	}

	for key, p := range props {
		propSchema, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if err := v.check(joinPath(path, key), propSchema, obj[key]); err != nil {
			return err
		}
	}
	return nil
}

func (v schemaVerifier) resolve(ref string) (map[string]any, error) {
	name, ok := strings.CutPrefix(ref, "#/$defs/")
	if !ok {
		return nil, fmt.Errorf("unsupported schema reference %q", ref)
	}
	def, ok := v.defs[name].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unknown schema definition %q", name)
	}
	return def, nil
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	}
	return false
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func fieldName(path string) string {
	if path == "" {
		return "config"
	}
	return path
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{RequiredFromJSONSchemaTags: true}
	return r.Reflect(&Config{})
}
