package library

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ParseError reports a malformed library export, with the byte offset of the
// offending element.
type ParseError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s at byte %d: %v", e.Path, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// parsePlist decodes the subset of Apple's property-list XML that the iTunes
// library export uses (dict, array, key, string, integer, real, date, data,
// true, false) into a generic value tree.
func parsePlist(r io.Reader) (map[string]any, int64, error) {
	d := xml.NewDecoder(r)

	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, d.InputOffset(), fmt.Errorf("no <plist> element found")
		}
		if err != nil {
			return nil, d.InputOffset(), err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "plist" {
			return nil, d.InputOffset(), fmt.Errorf("unexpected root element <%s>", se.Name.Local)
		}
		break
	}

	// The plist root holds exactly one value, a dict for library exports.
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, d.InputOffset(), err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "dict" {
				return nil, d.InputOffset(), fmt.Errorf("expected <dict> under <plist>, got <%s>", t.Name.Local)
			}
			root, err := parseDict(d)
			if err != nil {
				return nil, d.InputOffset(), err
			}
			return root, 0, nil
		case xml.EndElement:
			return nil, d.InputOffset(), fmt.Errorf("empty <plist> element")
		}
	}
}

func parseDict(d *xml.Decoder) (map[string]any, error) {
	dict := make(map[string]any)
	var key string
	haveKey := false

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "key" {
				if err := d.DecodeElement(&key, &t); err != nil {
					return nil, err
				}
				haveKey = true
				continue
			}
			if !haveKey {
				return nil, fmt.Errorf("value element <%s> without preceding <key>", t.Name.Local)
			}
			v, err := parseValue(d, t)
			if err != nil {
				return nil, err
			}
			dict[key] = v
			haveKey = false
		case xml.EndElement:
			return dict, nil
		}
	}
}

func parseArray(d *xml.Decoder) ([]any, error) {
	var values []any
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			v, err := parseValue(d, t)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		case xml.EndElement:
			return values, nil
		}
	}
}

func parseValue(d *xml.Decoder, se xml.StartElement) (any, error) {
	switch se.Name.Local {
	case "dict":
		return parseDict(d)
	case "array":
		return parseArray(d)
	case "string", "date":
		var s string
		if err := d.DecodeElement(&s, &se); err != nil {
			return nil, err
		}
		return s, nil
	case "data":
		var s string
		if err := d.DecodeElement(&s, &se); err != nil {
			return nil, err
		}
		return strings.TrimSpace(s), nil
	case "integer":
		var n int64
		if err := d.DecodeElement(&n, &se); err != nil {
			return nil, err
		}
		return n, nil
	case "real":
		var f float64
		if err := d.DecodeElement(&f, &se); err != nil {
			return nil, err
		}
		return f, nil
	case "true":
		if err := d.Skip(); err != nil {
			return nil, err
		}
		return true, nil
	case "false":
		if err := d.Skip(); err != nil {
			return nil, err
		}
		return false, nil
	default:
		return nil, fmt.Errorf("unsupported plist element <%s>", se.Name.Local)
	}
}

// dictString returns the string value for a key, or the fallback when absent.
func dictString(dict map[string]any, key, fallback string) string {
	if v, ok := dict[key].(string); ok {
		return v
	}
	return fallback
}

// dictInt returns the integer value for a key, or 0 when absent.
func dictInt(dict map[string]any, key string) int64 {
	if v, ok := dict[key].(int64); ok {
		return v
	}
	return 0
}

// dictBool returns the boolean value for a key, or false when absent.
func dictBool(dict map[string]any, key string) bool {
	if v, ok := dict[key].(bool); ok {
		return v
	}
	return false
}
