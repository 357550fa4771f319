package impact

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key names a predefined impact metric, or KeyCustom for a project-defined one.
type Key string

const (
	KeyMealsServed          Key = "meals_served"
	KeyPadsDistributed      Key = "pads_distributed"
	KeyStudentsEnrolled     Key = "students_enrolled"
	KeySchoolsRenovated     Key = "schools_renovated"
	KeyClassroomsBuilt      Key = "classrooms_built"
	KeyTreesPlanted         Key = "trees_planted"
	KeyToiletsBuilt         Key = "toilets_built"
	KeyWaterLitersSupplied  Key = "water_liters_supplied"
	KeyHealthCampsConducted Key = "health_camps_conducted"
	KeyPeopleTrained        Key = "people_trained"
	KeyVillagesCovered      Key = "villages_covered"
	KeyAwarenessSessions    Key = "awareness_sessions"
	KeyCustom               Key = "custom"
)

// PredefinedKeys is the closed set of non-custom metric keys.
var PredefinedKeys = map[Key]bool{
	KeyMealsServed:          true,
	KeyPadsDistributed:      true,
	KeyStudentsEnrolled:     true,
	KeySchoolsRenovated:     true,
	KeyClassroomsBuilt:      true,
	KeyTreesPlanted:         true,
	KeyToiletsBuilt:         true,
	KeyWaterLitersSupplied:  true,
	KeyHealthCampsConducted: true,
	KeyPeopleTrained:        true,
	KeyVillagesCovered:      true,
	KeyAwarenessSessions:    true,
}

// Primary and Secondary only decide display grouping and order.
var (
	Primary = []Key{
		KeyMealsServed,
		KeyPadsDistributed,
		KeyStudentsEnrolled,
		KeyTreesPlanted,
	}
	Secondary = []Key{
		KeySchoolsRenovated,
		KeyClassroomsBuilt,
		KeyToiletsBuilt,
		KeyWaterLitersSupplied,
		KeyHealthCampsConducted,
		KeyPeopleTrained,
		KeyVillagesCovered,
		KeyAwarenessSessions,
	}
)

// Entry is one impact metric value recorded against a project.
type Entry struct {
	Key         Key     `json:"key"`
	Value       float64 `json:"value"`
	CustomLabel string  `json:"customLabel,omitempty"`
}

// Label returns a human-readable name for the entry.
func (e Entry) Label() string {
	if e.Key == KeyCustom {
		return e.CustomLabel
	}
	return KeyLabel(e.Key)
}

// KeyLabel turns "trees_planted" into "Trees Planted".
func KeyLabel(k Key) string {
	parts := strings.Split(string(k), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// ParseKey accepts a predefined key or "custom".
func ParseKey(s string) (Key, error) {
	k := Key(strings.TrimSpace(strings.ToLower(s)))
	if k == KeyCustom || PredefinedKeys[k] {
		return k, nil
	}
	return "", fmt.Errorf("unknown impact metric %q", s)
}

// IdentityOf returns the de-duplication identity of an entry: the custom
// label for custom entries, the key otherwise. Labels are case-sensitive.
func IdentityOf(e Entry) string {
	if e.Key == KeyCustom {
		return strings.TrimSpace(e.CustomLabel)
	}
	return string(e.Key)
}

func identity(key Key, label string) string {
	return IdentityOf(Entry{Key: key, CustomLabel: label})
}

// Upsert adds an entry when its identity is absent and replaces the value
// otherwise. Values are clamped to >= 0. Custom entries with a blank label
// and unknown keys are ignored. The input slice is never modified.
func Upsert(list []Entry, key Key, value float64, customLabel string) []Entry {
	label := strings.TrimSpace(customLabel)
	if key == KeyCustom {
		if label == "" {
			return clone(list)
		}
	} else {
		if !PredefinedKeys[key] {
			return clone(list)
		}
		label = ""
	}
	if value < 0 {
		value = 0
	}

	id := identity(key, label)
	out := clone(list)
	for i := range out {
		if IdentityOf(out[i]) == id {
			out[i].Value = value
			return out
		}
	}
	return append(out, Entry{Key: key, Value: value, CustomLabel: label})
}

// Remove drops the entry with the given identity, if present.
func Remove(list []Entry, key Key, customLabel string) []Entry {
	id := identity(key, customLabel)
	out := make([]Entry, 0, len(list))
	for _, e := range list {
		if IdentityOf(e) == id {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ValueOf returns the stored value for an identity, or 0 when absent.
func ValueOf(list []Entry, id string) float64 {
	for _, e := range list {
		if IdentityOf(e) == id {
			return e.Value
		}
	}
	return 0
}

// MergeSum sums values by identity across both lists. Output order follows
// first appearance (a before b). Nothing is dropped.
func MergeSum(a, b []Entry) []Entry {
	out := make([]Entry, 0, len(a)+len(b))
	index := make(map[string]int, len(a)+len(b))
	for _, list := range [][]Entry{a, b} {
		for _, e := range list {
			id := IdentityOf(e)
			if i, ok := index[id]; ok {
				out[i].Value += e.Value
				continue
			}
			index[id] = len(out)
			out = append(out, e)
		}
	}
	return out
}

// Positive returns the entries whose value is > 0. It is a read-time view.
func Positive(list []Entry) []Entry {
	out := make([]Entry, 0, len(list))
	for _, e := range list {
		if e.Value > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Encode serializes entries for the impact_metrics column.
func Encode(list []Entry) (string, error) {
	if list == nil {
		list = []Entry{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encoding impact metrics: %w", err)
	}
	return string(b), nil
}

// Decode parses the impact_metrics column. Empty input yields an empty list.
func Decode(s string) ([]Entry, error) {
	if strings.TrimSpace(s) == "" {
		return []Entry{}, nil
	}
	var list []Entry
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, fmt.Errorf("decoding impact metrics: %w", err)
	}
	return list, nil
}

func clone(list []Entry) []Entry {
	out := make([]Entry, len(list))
	copy(out, list)
	return out
}
