package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/santhosh-tekuri/jsonschema/v5"

	cclog "github.com/lukeswitz/wardragon-analytics/pkg/log"
)

// Kind selects which embedded JSON Schema document validates a given input.
type Kind int

const (
	ConfigSchema Kind = iota + 1
	KitsSchema
)

//go:embed schemas/*
var schemaFiles embed.FS

func loadSchema(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return schemaFiles.Open(u.Host + u.Path)
}

func init() {
	// url.Parse lowercases the scheme, so the loader key is lowercase.
	jsonschema.Loaders["embedfs"] = loadSchema
}

func compile(k Kind) (*jsonschema.Schema, error) {
	switch k {
	case ConfigSchema:
		return jsonschema.Compile("embedFS://schemas/config.schema.json")
	case KitsSchema:
		return jsonschema.Compile("embedFS://schemas/kits.schema.json")
	default:
		return nil, fmt.Errorf("config: unknown schema kind %d", k)
	}
}

// Validate decodes r as JSON and checks it against the schema for k.
func Validate(k Kind, r io.Reader) error {
	s, err := compile(k)
	if err != nil {
		return err
	}

	var v interface{}
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		cclog.Errorf("config: failed to decode document for validation: %v", err)
		return err
	}

	if err := s.Validate(v); err != nil {
		return fmt.Errorf("config: schema validation failed: %w", err)
	}
	return nil
}

// ValidateValue checks an already-decoded document (e.g. from YAML) against
// the schema for k, without requiring a JSON round-trip.
func ValidateValue(k Kind, v interface{}) error {
	s, err := compile(k)
	if err != nil {
		return err
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("config: schema validation failed: %w", err)
	}
	return nil
}
