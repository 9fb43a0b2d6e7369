// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package json

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// BigIntType is the discriminant of the wrapper objects holding
// arbitrary-precision integers.
const BigIntType = "bigint"

var (
	ErrInvalidBigInt       = errors.New("invalid big integer value")
	ErrUnsupportedMapKey   = errors.New("only maps with string keys are supported")
	ErrUnsupportedDataKind = errors.New("unsupported data kind")
)

var (
	bigIntType        = reflect.TypeOf(big.Int{})
	bigIntPtrType     = reflect.TypeOf(&big.Int{})
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Encode serialises the value to JSON. Every big.Int found while walking
// the value is written as {"type":"bigint","value":"<base 10>"} so it can
// be told apart from numbers and strings when decoding. Map keys are
// sorted, so the output is canonical for a given value.
func Encode(v interface{}) ([]byte, error) {
	tree, err := toTree(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// Decode reverses Encode, restoring big integers into big.Int fields.
// Unknown fields are rejected.
func Decode(data []byte, out interface{}) error {
	tree, err := Unmarshal(data)
	if err != nil {
		return err
	}
	return DecodeTree(tree, out)
}

// DecodeTree decodes an already parsed value, such as a map produced by
// another decoder, into out.
func DecodeTree(tree interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			BigIntHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		ErrorUnused: true,
		ZeroFields:  true,
		Result:      out,
		TagName:     "json",
	})
	if err != nil {
		return fmt.Errorf("could not initialise the decoder: %w", err)
	}

	if err := decoder.Decode(tree); err != nil {
		return fmt.Errorf("could not decode the value: %w", err)
	}
	return nil
}

// BigIntHookFunc converts the tagged wrapper objects produced by Encode
// into *big.Int.
func BigIntHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != bigIntType && to != bigIntPtrType {
			return data, nil
		}

		m, ok := data.(map[string]interface{})
		if !ok {
			return data, nil
		}

		if len(m) != 2 || m["type"] != BigIntType {
			return nil, fmt.Errorf("%w: expected a %q wrapper", ErrInvalidBigInt, BigIntType)
		}

		raw, ok := m["value"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: the value must be a string", ErrInvalidBigInt)
		}

		n, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a base 10 integer", ErrInvalidBigInt, raw)
		}
		return n, nil
	}
}

func tagBigInt(n *big.Int) map[string]interface{} {
	return map[string]interface{}{
		"type":  BigIntType,
		"value": n.String(),
	}
}

func toTree(v reflect.Value) (interface{}, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return nil, nil
		}
		if v.Type() == bigIntPtrType {
			return tagBigInt(v.Interface().(*big.Int)), nil
		}
		return toTree(v.Elem())
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return toTree(v.Elem())
	}

	if v.Type() == bigIntType {
		n := v.Interface().(big.Int)
		return tagBigInt(&n), nil
	}

	if v.Type().Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, err
		}
		return string(text), nil
	}

	switch v.Kind() {
	case reflect.Struct:
		return structToTree(v)
	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		return listToTree(v)
	case reflect.Array:
		return listToTree(v)
	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		if v.Type().Key().Kind() != reflect.String {
			return nil, ErrUnsupportedMapKey
		}
		m := make(map[string]interface{}, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			elem, err := toTree(iter.Value())
			if err != nil {
				return nil, err
			}
			m[iter.Key().String()] = elem
		}
		return m, nil
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return v.Interface(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDataKind, v.Kind())
	}
}

func structToTree(v reflect.Value) (interface{}, error) {
	t := v.Type()
	m := make(map[string]interface{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty := parseTag(field)
		if name == "-" {
			continue
		}

		fieldValue := v.Field(i)
		if omitEmpty && fieldValue.IsZero() {
			continue
		}

		elem, err := toTree(fieldValue)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		m[name] = elem
	}
	return m, nil
}

func listToTree(v reflect.Value) (interface{}, error) {
	list := make([]interface{}, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem, err := toTree(v.Index(i))
		if err != nil {
			return nil, err
		}
		list = append(list, elem)
	}
	return list, nil
}

func parseTag(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name, false
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = field.Name
	}

	omitEmpty := false
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}

// Unmarshal parses the JSON document into an untyped tree, keeping numbers
// as json.Number. The tree can be handed to DecodeTree.
func Unmarshal(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("could not parse JSON: %w", err)
	}
	return tree, nil
}
