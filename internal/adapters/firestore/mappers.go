package firestore

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"luxe_residences/internal/domain"
)

/********** wire shapes (REST v1) **********/

type listResponse struct {
	Documents     []document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

type document struct {
	Name   string           `json:"name"` // projects/.../documents/{collection}/{id}
	Fields map[string]value `json:"fields"`
}

// value is Firestore's tagged union; exactly one member is set.
type value struct {
	StringValue    *string   `json:"stringValue,omitempty"`
	IntegerValue   *string   `json:"integerValue,omitempty"` // int64 as decimal string
	DoubleValue    *float64  `json:"doubleValue,omitempty"`
	BooleanValue   *bool     `json:"booleanValue,omitempty"`
	TimestampValue *string   `json:"timestampValue,omitempty"`
	ArrayValue     *arrayVal `json:"arrayValue,omitempty"`
	MapValue       *mapVal   `json:"mapValue,omitempty"`
}

type arrayVal struct {
	Values []value `json:"values"`
}

type mapVal struct {
	Fields map[string]value `json:"fields"`
}

/********** tiny helpers **********/

// plain flattens a tagged value into string/int64/float64/bool/[]any/map[string]any.
func plain(v value) any {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntegerValue != nil:
		if n, err := strconv.ParseInt(*v.IntegerValue, 10, 64); err == nil {
			return n
		}
		return *v.IntegerValue
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.TimestampValue != nil:
		return *v.TimestampValue
	case v.ArrayValue != nil:
		out := make([]any, 0, len(v.ArrayValue.Values))
		for _, e := range v.ArrayValue.Values {
			out = append(out, plain(e))
		}
		return out
	case v.MapValue != nil:
		return plainFields(v.MapValue.Fields)
	}
	return nil
}

func plainFields(fs map[string]value) map[string]any {
	out := make(map[string]any, len(fs))
	for k, v := range fs {
		out[k] = plain(v)
	}
	return out
}

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return s
	}
	return ""
}

// lookupIntFlexible accepts integers, whole doubles and digit strings.
func lookupIntFlexible(m map[string]any, path string) (int, bool) {
	switch v := lookupAny(m, path).(type) {
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func lookupStrings(m map[string]any, path string) []string {
	arr, ok := lookupAny(m, path).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

/********** document -> domain **********/

var errNoFeatures = errors.New("features missing or not integers")

// docID returns the last path segment of a document resource name.
func docID(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func mapDocument(d document) (domain.Residence, error) {
	m := plainFields(d.Fields)
	r := domain.Residence{
		ID:          docID(d.Name),
		Name:        lookupStr(m, "name"),
		Description: lookupStr(m, "description"),
		Price:       lookupStr(m, "price"),
		Image:       lookupStr(m, "image"),
		SubImages:   lookupStrings(m, "subImages"),
		Location:    lookupStr(m, "location"),
	}
	if r.ID == "" {
		return domain.Residence{}, fmt.Errorf("document without name")
	}
	if sold, ok := lookupAny(m, "sold").(bool); ok {
		r.Sold = sold
	}

	beds, ok1 := lookupIntFlexible(m, "features.beds")
	baths, ok2 := lookupIntFlexible(m, "features.baths")
	sqft, ok3 := lookupIntFlexible(m, "features.sqft")
	if !ok1 || !ok2 || !ok3 {
		return domain.Residence{}, errNoFeatures
	}
	r.Features = domain.Features{Beds: beds, Baths: baths, Sqft: sqft}
	return r, nil
}
