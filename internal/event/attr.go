package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AttrKind discriminates the untagged variants of an AttrValue.
type AttrKind int

const (
	AttrText AttrKind = iota
	AttrUInteger
	AttrInteger
	AttrFloat
	AttrBoolean
)

// AttrValue is a log attribute value. It serializes untagged: the JSON
// form is whichever bare scalar the variant holds, with no wrapping
// type discriminator.
type AttrValue struct {
	kind AttrKind
	text string
	u    uint64
	i    int64
	f    float64
	b    bool
}

func TextValue(v string) AttrValue     { return AttrValue{kind: AttrText, text: v} }
func UIntegerValue(v uint64) AttrValue { return AttrValue{kind: AttrUInteger, u: v} }
func IntegerValue(v int64) AttrValue   { return AttrValue{kind: AttrInteger, i: v} }
func FloatValue(v float64) AttrValue   { return AttrValue{kind: AttrFloat, f: v} }
func BooleanValue(v bool) AttrValue    { return AttrValue{kind: AttrBoolean, b: v} }

func (v AttrValue) Kind() AttrKind { return v.kind }

func (v AttrValue) Text() (string, bool) {
	if v.kind != AttrText {
		return "", false
	}
	return v.text, true
}

func (v AttrValue) UInteger() (uint64, bool) {
	if v.kind != AttrUInteger {
		return 0, false
	}
	return v.u, true
}

func (v AttrValue) Integer() (int64, bool) {
	if v.kind != AttrInteger {
		return 0, false
	}
	return v.i, true
}

func (v AttrValue) Float() (float64, bool) {
	if v.kind != AttrFloat {
		return 0, false
	}
	return v.f, true
}

func (v AttrValue) Boolean() (bool, bool) {
	if v.kind != AttrBoolean {
		return false, false
	}
	return v.b, true
}

func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AttrText:
		return json.Marshal(v.text)
	case AttrUInteger:
		return json.Marshal(v.u)
	case AttrInteger:
		return json.Marshal(v.i)
	case AttrFloat:
		return json.Marshal(v.f)
	case AttrBoolean:
		return json.Marshal(v.b)
	default:
		return nil, fmt.Errorf("event: attribute value has unknown kind %d", v.kind)
	}
}

func (v *AttrValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = TextValue(t)
	case bool:
		*v = BooleanValue(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			if i >= 0 {
				*v = UIntegerValue(uint64(i))
			} else {
				*v = IntegerValue(i)
			}
			return nil
		}
		f, err := t.Float64()
		if err != nil {
			return fmt.Errorf("event: attribute value %q is not a number", t.String())
		}
		*v = FloatValue(f)
	default:
		return fmt.Errorf("event: attribute value must be a string, number, or boolean")
	}
	return nil
}
