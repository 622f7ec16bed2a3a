package podspec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StringList decodes attributes that CocoaPods accepts either as a single
// string or as a list of strings (default_subspecs, requirement lists).
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = list
	return nil
}

// Target is a declared platform with its optional deployment target.
type Target struct {
	Platform Platform
	Version  string // empty when declared without a minimum
}

// Targets is the "platforms" attribute in declaration order.
type Targets []Target

// Lookup returns the declared target for p.
func (t Targets) Lookup(p Platform) (Target, bool) {
	for _, tgt := range t {
		if tgt.Platform == p {
			return tgt, true
		}
	}
	return Target{}, false
}

// UnmarshalJSON decodes {"ios": "11.0", "osx": null}. Unknown platform names
// are skipped so newer specs keep decoding.
func (t *Targets) UnmarshalJSON(data []byte) error {
	var out Targets
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		p, err := ParsePlatform(key)
		if err != nil {
			return nil
		}
		v, err := scalar(raw)
		if err != nil {
			return fmt.Errorf("platforms.%s: %w", key, err)
		}
		out = append(out, Target{Platform: p, Version: v})
		return nil
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

// MarshalJSON encodes targets as an object, keeping declaration order.
func (t Targets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tgt := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, string(tgt.Platform))
		if tgt.Version == "" {
			buf.WriteString("null")
			continue
		}
		b, _ := json.Marshal(tgt.Version)
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dependency is a declared dependency on another pod or subspec.
type Dependency struct {
	Name         string     // Full name, e.g. "GoogleUtilities/Environment"
	Requirements StringList // e.g. ["~> 7.8"]; empty means any version
}

// Dependencies keeps the declaration order of a "dependencies" object.
type Dependencies []Dependency

// UnmarshalJSON decodes {"Name": ["~> 1.0"], "Other": []}.
func (d *Dependencies) UnmarshalJSON(data []byte) error {
	var out Dependencies
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var reqs StringList
		if err := json.Unmarshal(raw, &reqs); err != nil {
			return fmt.Errorf("dependencies.%s: %w", key, err)
		}
		out = append(out, Dependency{Name: key, Requirements: reqs})
		return nil
	})
	if err != nil {
		return err
	}
	*d = out
	return nil
}

// MarshalJSON encodes dependencies as an object, keeping declaration order.
func (d Dependencies) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, dep := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, dep.Name)
		reqs := dep.Requirements
		if reqs == nil {
			reqs = StringList{}
		}
		b, err := json.Marshal([]string(reqs))
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeObject walks a JSON object in document order. A null document is
// treated as an empty object.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// scalar renders a string, number or null as a plain string.
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string, number or null")
	}
	return n.String(), nil
}

func writeKey(buf *bytes.Buffer, key string) {
	b, _ := json.Marshal(key)
	buf.Write(b)
	buf.WriteByte(':')
}
