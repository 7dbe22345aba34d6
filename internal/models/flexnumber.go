package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// FlexNumber decodes a numeric field that historical documents and form
// payloads carry as either a number or a numeric string ("2", "2.5").
// Range checks happen during normalization, not here.
type FlexNumber float64

func (n FlexNumber) Float() float64 { return float64(n) }

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s := string(data)
	if s[0] == '"' {
		var err error
		if err = json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a numeric value: %q", s)
	}
	*n = FlexNumber(f)
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

func (n *FlexNumber) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeDouble:
		*n = FlexNumber(rv.Double())
	case bson.TypeInt32:
		*n = FlexNumber(rv.Int32())
	case bson.TypeInt64:
		*n = FlexNumber(rv.Int64())
	case bson.TypeString:
		s := strings.TrimSpace(rv.StringValue())
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a numeric value: %q", s)
		}
		*n = FlexNumber(f)
	case bson.TypeNull:
	default:
		return fmt.Errorf("cannot decode %v into a number", t)
	}
	return nil
}
