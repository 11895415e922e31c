// Package catalog holds the table of man pages emitted by the GeoGig
// documentation build.
//
// A Catalog is constructed once, validated eagerly, and never mutated
// afterwards. Renderers receive entries whose sections are already
// normalized to integers.
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Section is a Unix manual section number.
type Section int

const (
	MinSection Section = 1
	MaxSection Section = 9
)

func (s Section) String() string {
	return strconv.Itoa(int(s))
}

// Valid reports whether s is within the conventional man section range.
func (s Section) Valid() bool {
	return s >= MinSection && s <= MaxSection
}

// ParseSection coerces an integer-like value to a Section. Strings are
// trimmed and parsed as base-10 integers; floats must be integral.
func ParseSection(v any) (Section, error) {
	var n int64
	switch s := v.(type) {
	case Section:
		n = int64(s)
	case int:
		n = int64(s)
	case int8:
		n = int64(s)
	case int16:
		n = int64(s)
	case int32:
		n = int64(s)
	case int64:
		n = s
	case uint:
		n = int64(s)
	case uint8:
		n = int64(s)
	case uint16:
		n = int64(s)
	case uint32:
		n = int64(s)
	case float32:
		return ParseSection(float64(s))
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) || s != math.Trunc(s) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidSection, s)
		}
		n = int64(s)
	case string:
		trimmed := strings.TrimSpace(s)
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidSection, s)
		}
		n = parsed
	case nil:
		return 0, fmt.Errorf("%w: missing", ErrInvalidSection)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidSection, v)
	}

	if n < int64(MinSection) || n > int64(MaxSection) {
		return 0, fmt.Errorf("%w: %d outside %d..%d", ErrInvalidSection, n, MinSection, MaxSection)
	}
	return Section(n), nil
}

// UnmarshalYAML accepts quoted and bare section numbers, including bare
// integral floats such as 1.0.
func (s *Section) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: %w: expected a scalar", node.Line, ErrInvalidSection)
	}
	var v any = node.Value
	if node.ShortTag() == "!!float" {
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("line %d: %w: %v", node.Line, ErrInvalidSection, err)
		}
		v = f
	}
	parsed, err := ParseSection(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = parsed
	return nil
}

// UnmarshalJSON accepts numbers and quoted numbers.
func (s *Section) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSection, err)
	}
	parsed, err := ParseSection(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML always emits the integer form.
func (s Section) MarshalYAML() (any, error) {
	return int(s), nil
}

// Entry describes one man page of the build.
type Entry struct {
	SourceName  string   `yaml:"source" json:"source"`
	PageName    string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Authors     []string `yaml:"authors" json:"authors"`
	Section     Section  `yaml:"section" json:"section"`
}

// Title returns the page title as shown in the man header, e.g. "geogig-init(1)".
func (e Entry) Title() string {
	return e.PageName + "(" + e.Section.String() + ")"
}

// FileName returns the man page file name, e.g. "geogig-init.1".
func (e Entry) FileName() string {
	return e.PageName + "." + e.Section.String()
}

func (e Entry) clone() Entry {
	e.Authors = append([]string(nil), e.Authors...)
	return e
}
