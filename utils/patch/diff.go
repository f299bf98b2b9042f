// Package patch computes partial-update payloads by deep-diffing an edited
// JSON document against the originally loaded one.
package patch

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// readOnly keys are never sent back in an update.
var readOnly = map[string]bool{
	"id":        true,
	"_id":       true,
	"createdAt": true,
	"updatedAt": true,
	"__v":       true,
}

// Diff returns the fields of edited that differ from original. Nested objects
// are compared field by field and only their changed leaves are kept. Keys
// absent from edited are ignored. An empty result means nothing changed.
func Diff(original, edited map[string]interface{}) map[string]interface{} {
	return diffObject(original, edited, true)
}

func diffObject(original, edited map[string]interface{}, top bool) map[string]interface{} {
	changes := make(map[string]interface{})
	for key, newVal := range edited {
		if top && readOnly[key] {
			continue
		}
		oldVal, existed := original[key]

		newObj, newIsObj := newVal.(map[string]interface{})
		oldObj, oldIsObj := oldVal.(map[string]interface{})
		if newIsObj && oldIsObj {
			if nested := diffObject(oldObj, newObj, false); len(nested) > 0 {
				changes[key] = nested
			}
			continue
		}
		if newIsObj && (!existed || oldVal == nil) {
			// a nested object the record never had or held as null: keep only its non-empty leaves
			if nested := diffObject(map[string]interface{}{}, newObj, false); len(nested) > 0 {
				changes[key] = nested
			}
			continue
		}

		if !existed && isEmpty(newVal) {
			continue
		}
		if !reflect.DeepEqual(oldVal, newVal) {
			changes[key] = newVal
		}
	}
	return changes
}

// isEmpty treats null and "" as "no value" so that an untouched blank form
// field does not count as a change against a missing key.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

// DiffJSON decodes both documents and diffs them.
func DiffJSON(original, edited []byte) (map[string]interface{}, error) {
	var o, e map[string]interface{}
	if err := json.Unmarshal(original, &o); err != nil {
		return nil, fmt.Errorf("failed to decode original document: %w", err)
	}
	if err := json.Unmarshal(edited, &e); err != nil {
		return nil, fmt.Errorf("failed to decode edited document: %w", err)
	}
	return Diff(o, e), nil
}

// ToMap converts v to its generic JSON object form.
func ToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
