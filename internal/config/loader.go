package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// FileEnvVar names the environment variable that points at an optional TOML config file.
const FileEnvVar = "FILEPARSER_CONFIG"

// Load builds the configuration from defaults, the optional TOML file named by
// FILEPARSER_CONFIG, and environment variables, in that order of precedence.
// Returns an error if a value cannot be parsed or validation fails.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(FileEnvVar))
}

// LoadFile is Load with an explicit config file path. An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	v := reflect.ValueOf(cfg).Elem()

	if err := applyDefaults(v); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := applyTOML(v, raw, ""); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := applyEnv(v); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func isNested(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t != reflect.TypeOf(time.Time{})
}

// applyDefaults populates every field carrying a default tag.
func applyDefaults(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		if isNested(field.Type) {
			if err := applyDefaults(fieldVal); err != nil {
				return err
			}
			continue
		}
		def, ok := field.Tag.Lookup("default")
		if !ok || def == "" {
			continue
		}
		if err := setField(fieldVal, def); err != nil {
			return fmt.Errorf("invalid default for %s: %w", field.Name, err)
		}
	}
	return nil
}

// applyTOML overlays decoded TOML tables onto the struct, matching keys by toml tag.
// Unknown keys are rejected so typos surface at startup.
func applyTOML(v reflect.Value, raw map[string]any, prefix string) error {
	t := v.Type()
	known := make(map[string]bool, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		key := field.Tag.Get("toml")
		if key == "" || !fieldVal.CanSet() {
			continue
		}
		known[key] = true

		val, ok := raw[key]
		if !ok {
			continue
		}

		if isNested(field.Type) {
			table, ok := val.(map[string]any)
			if !ok {
				return fmt.Errorf("%s%s: expected a table", prefix, key)
			}
			if err := applyTOML(fieldVal, table, prefix+key+"."); err != nil {
				return err
			}
			continue
		}

		s, err := tomlString(val)
		if err != nil {
			return fmt.Errorf("%s%s: %w", prefix, key, err)
		}
		if err := setField(fieldVal, s); err != nil {
			return fmt.Errorf("invalid value for %s%s=%q: %w", prefix, key, s, err)
		}
	}

	var unknown []string
	for k := range raw {
		if !known[k] {
			unknown = append(unknown, prefix+k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// tomlString renders a decoded TOML scalar or array in the same textual form
// an environment variable would carry, so setField handles both layers.
func tomlString(val any) (string, error) {
	switch x := val.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			s, err := tomlString(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", val)
	}
}

// applyEnv recursively overrides struct fields from environment variables.
func applyEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if isNested(field.Type) {
			if err := applyEnv(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" {
			if alt := field.Tag.Get("envAlt"); alt != "" {
				value = os.Getenv(alt)
			}
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		// Split comma-separated values, trim whitespace
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, strings.ToLower(p))
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their environment variable so messages match what operators set.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, describe(fe))
		}
	}

	// Cross-field checks the tag language can't express cleanly.
	if c.Rate.Enabled && c.Rate.UploadLimit > c.Rate.RequestsPerMinute && c.Rate.RequestsPerMinute > 0 {
		errs = append(errs, fmt.Sprintf("RATE_LIMIT_UPLOAD (%d) must be <= RATE_LIMIT_REQUESTS_PER_MINUTE (%d)",
			c.Rate.UploadLimit, c.Rate.RequestsPerMinute))
	}
	if c.Analysis.CSVPreviewRows > c.Analysis.CSVSampleRows {
		errs = append(errs, fmt.Sprintf("ANALYSIS_CSV_PREVIEW_ROWS (%d) must be <= ANALYSIS_CSV_SAMPLE_ROWS (%d)",
			c.Analysis.CSVPreviewRows, c.Analysis.CSVSampleRows))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s (%q) must be one of: %s", name, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max":
		return fmt.Sprintf("%s (%v) must be %s %s", name, fe.Value(), fe.Tag(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be positive", name)
	case "gte":
		return fmt.Sprintf("%s must be non-negative", name)
	case "required_if":
		return fmt.Sprintf("%s is required when its section is enabled", name)
	default:
		return fmt.Sprintf("%s failed %q check", name, fe.Tag())
	}
}
