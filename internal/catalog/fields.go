package catalog

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// Catalogue files are produced by other tools, so every document level keeps
// the keys it does not model and writes them back untouched.

type (
	catalogFields Catalog
	metaFields    Meta
	itemFields    Item
)

var (
	catalogKeys = jsonKeys(reflect.TypeFor[catalogFields]())
	metaKeys    = jsonKeys(reflect.TypeFor[metaFields]())
	itemKeys    = jsonKeys(reflect.TypeFor[itemFields]())
)

// UnmarshalJSON implements json.Unmarshaler.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var fields catalogFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := unknownFields(data, catalogKeys)
	if err != nil {
		return err
	}
	*c = Catalog(fields)
	c.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Catalog) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(catalogFields(c), c.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Meta) UnmarshalJSON(data []byte) error {
	var fields metaFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := unknownFields(data, metaKeys)
	if err != nil {
		return err
	}
	*m = Meta(fields)
	m.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m Meta) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(metaFields(m), m.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Item) UnmarshalJSON(data []byte) error {
	var fields itemFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := unknownFields(data, itemKeys)
	if err != nil {
		return err
	}
	*i = Item(fields)
	i.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (i Item) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(itemFields(i), i.Extra)
}

func jsonKeys(t reflect.Type) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}
		keys[name] = struct{}{}
	}
	return keys
}

func unknownFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for key := range all {
		if _, ok := known[key]; ok {
			delete(all, key)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// marshalWithExtra encodes v and adds the extra keys that v does not set.
func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	known, err := encode(v)
	if err != nil || len(extra) == 0 {
		return known, err
	}
	merged := make(map[string]json.RawMessage, len(extra)+8)
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for key, raw := range extra {
		if _, ok := merged[key]; !ok {
			merged[key] = raw
		}
	}
	return encode(merged)
}

// encode is json.Marshal without HTML escaping, matching Save.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
