package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StringList holds product category names. Older product documents store a
// single string; both shapes decode, writes always use an array.
type StringList []string

// Has reports whether name is one of the categories.
func (s StringList) Has(name string) bool {
	for _, v := range s {
		if v == name {
			return true
		}
	}
	return false
}

func (s *StringList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*s = nil
	case bsontype.Array:
		var names []string
		if err := bson.UnmarshalValue(t, data, &names); err != nil {
			return err
		}
		*s = names
	case bsontype.String:
		var name string
		if err := bson.UnmarshalValue(t, data, &name); err != nil {
			return err
		}
		*s = StringList{}
		if name = strings.TrimSpace(name); name != "" {
			*s = StringList{name}
		}
	default:
		return fmt.Errorf("category: unsupported bson type %s", t)
	}
	return nil
}

func (s StringList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if s == nil {
		return bson.MarshalValue([]string{})
	}
	return bson.MarshalValue([]string(s))
}
