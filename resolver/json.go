package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ParseValue decodes a JSON document into a Value, keeping the key order of objects.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	// don't convert number to float64
	dec.UseNumber()

	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	v, err := handleDelim(t, dec)
	if err != nil {
		return nil, err
	}

	t, err = dec.Token()
	if err != io.EOF {
		return nil, fmt.Errorf("expect end of JSON value but got more token: %T: %v or err: %v", t, t, err)
	}
	return v, nil
}

// UnmarshalJSON implements type json.Unmarshaler interface
func (obj *Object) UnmarshalJSON(data []byte) error {
	v, err := ParseValue(data)
	if err != nil {
		return err
	}
	o, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("expect JSON object open with '{'")
	}
	*obj = *o
	return nil
}

func (obj *Object) parse(dec *json.Decoder) (err error) {
	var t json.Token
	for dec.More() {
		t, err = dec.Token()
		if err != nil {
			return err
		}

		key, ok := t.(string)
		if !ok {
			return fmt.Errorf("expecting JSON key should be always a string: %T: %v", t, t)
		}

		t, err = dec.Token()
		if err != nil {
			return err
		}

		var value Value
		value, err = handleDelim(t, dec)
		if err != nil {
			return err
		}
		obj.Set(key, value)
	}

	t, err = dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '}' {
		return fmt.Errorf("expect JSON object close with '}'")
	}
	return nil
}

func parseArray(dec *json.Decoder) (arr Array, err error) {
	var t json.Token
	arr = Array{}
	for dec.More() {
		t, err = dec.Token()
		if err != nil {
			return
		}

		var value Value
		value, err = handleDelim(t, dec)
		if err != nil {
			return
		}
		arr = append(arr, value)
	}
	t, err = dec.Token()
	if err != nil {
		return
	}
	if delim, ok := t.(json.Delim); !ok || delim != ']' {
		err = fmt.Errorf("expect JSON array close with ']'")
	}
	return
}

func handleDelim(t json.Token, dec *json.Decoder) (Value, error) {
	switch v := t.(type) {
	case json.Delim:
		switch v {
		case '{':
			obj := NewObject()
			if err := obj.parse(dec); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter: %q", v)
		}
	case string:
		return String(v), nil
	case nil:
		return Null{}, nil
	default:
		// bool or json.Number
		return Literal{Raw: v}, nil
	}
}
