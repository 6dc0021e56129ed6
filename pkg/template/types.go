package template

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// Template is a named list of attributes.
type Template struct {
	// Name identifies the template.
	Name string `yaml:"name"`

	// Description is free text shown by the CLI.
	Description string `yaml:"description,omitempty"`

	// Attributes are added in order.
	Attributes []AttributeSpec `yaml:"attributes"`

	// File is the path the template was loaded from, if any.
	File string `yaml:"-"`
}

// AttributeSpec describes one attribute.
type AttributeSpec struct {
	OID    string      `yaml:"oid"`
	Values []ValueSpec `yaml:"values"`

	// Line is the source line of the attribute (0 if unknown).
	Line int `yaml:"-"`
}

// UnmarshalYAML records the source line of the attribute.
func (a *AttributeSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain AttributeSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*a = AttributeSpec(p)
	a.Line = node.Line
	return nil
}

// ValueSpec describes one attribute value.
type ValueSpec struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// Value types.
const (
	TypeOID    = "oid"
	TypeOctets = "octets"
	TypeHex    = "hex"
	TypeUTF8   = "utf8"
	TypeBMP    = "bmp"
	TypeTime   = "time"
	TypeRaw    = "raw"
)

// LoadError provides details about a template loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	prefix := e.File
	if e.Line > 0 {
		prefix += ":" + strconv.Itoa(e.Line)
	}
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
