package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// reservedMessageKey is never present as an attribute key: the message
// lives only in Log.Message.
const reservedMessageKey = "message"

// Log is the structured-log event variant. Attributes preserve
// insertion order and have unique keys.
type Log struct {
	Attributes *orderedmap.OrderedMap[string, AttrValue]
	Message    string
}

// NewLogValue returns a Log with an empty attribute map; wrap it with
// NewLog to get an Event.
func NewLogValue(message string) Log {
	return Log{Attributes: orderedmap.New[string, AttrValue](), Message: message}
}

// SetAttribute inserts or overwrites an attribute, preserving insertion
// order for new keys. Setting the reserved "message" key is a no-op:
// that field never exists as an attribute.
func (l *Log) SetAttribute(key string, value AttrValue) {
	if key == reservedMessageKey {
		return
	}
	l.Attributes.Set(key, value)
}

// HasAttribute reports whether the attribute map contains key.
func (l Log) HasAttribute(key string) bool {
	_, ok := l.Attributes.Get(key)
	return ok
}

// Clone returns a deep copy: a new attribute map with the same entries.
func (l Log) Clone() Log {
	out := NewLogValue(l.Message)
	if l.Attributes != nil {
		for pair := l.Attributes.Oldest(); pair != nil; pair = pair.Next() {
			out.Attributes.Set(pair.Key, pair.Value)
		}
	}
	return out
}

// MarshalJSON renders the log as the wire "content" object: every
// attribute inline, plus the dedicated "message" field.
func (l Log) MarshalJSON() ([]byte, error) {
	attrs := l.Attributes
	if attrs == nil {
		attrs = orderedmap.New[string, AttrValue]()
	}
	attrBytes, err := attrs.MarshalJSON()
	if err != nil {
		return nil, err
	}
	msgBytes, err := json.Marshal(l.Message)
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(attrBytes)+len(msgBytes)+16))
	buf.Write(attrBytes[:len(attrBytes)-1]) // everything up to the final '}'
	if attrs.Len() > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"message":`)
	buf.Write(msgBytes)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses the wire "content" object, separating the
// reserved "message" key from the ordered attribute set and preserving
// the order attributes were declared in.
func (l *Log) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("event: log content must be a JSON object")
	}

	attrs := orderedmap.New[string, AttrValue]()
	message := ""
	haveMessage := false

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("event: log content key must be a string")
		}
		if key == reservedMessageKey {
			if err := dec.Decode(&message); err != nil {
				return fmt.Errorf("event: decoding message: %w", err)
			}
			haveMessage = true
			continue
		}
		var v AttrValue
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("event: decoding attribute %q: %w", key, err)
		}
		attrs.Set(key, v)
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return err
	}
	if !haveMessage {
		return fmt.Errorf("event: log content missing %q field", reservedMessageKey)
	}

	l.Attributes = attrs
	l.Message = message
	return nil
}
