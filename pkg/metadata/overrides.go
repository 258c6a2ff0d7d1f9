package metadata

import (
	"errors"
	"io"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Overrides maps a type name to per-field aliases:
//
//	github.com/acme/billing.Invoice:
//	  CustomerID: customer
//	  Total: amount
//
// Type names are matched as "<pkgpath>.<Name>" first and reflect.Type.String() second.
// An override wins over the alias declared in the struct tag.
type Overrides map[string]map[string]string

// LoadOverrides parses alias overrides from YAML.
func LoadOverrides(r io.Reader) (Overrides, error) {
	var o Overrides
	if err := yaml.NewDecoder(r).Decode(&o); err != nil {
		if errors.Is(err, io.EOF) {
			return Overrides{}, nil
		}
		return nil, errors.Join(ErrInvalidOverrides, err)
	}
	for typeName, fields := range o {
		if typeName == "" {
			return nil, errors.Join(ErrInvalidOverrides, errors.New("empty type name"))
		}
		for field, alias := range fields {
			if field == "" || alias == "" {
				return nil, errors.Join(ErrInvalidOverrides, errors.New("empty field or alias for "+typeName))
			}
		}
	}
	return o, nil
}

func (o Overrides) lookup(t reflect.Type, field string) (string, bool) {
	if len(o) == 0 {
		return "", false
	}
	if t.PkgPath() != "" {
		if fields, ok := o[t.PkgPath()+"."+t.Name()]; ok {
			if alias, ok := fields[field]; ok {
				return alias, true
			}
		}
	}
	if fields, ok := o[t.String()]; ok {
		alias, ok := fields[field]
		return alias, ok
	}
	return "", false
}
