//go:build debug

package callcc

import (
	"reflect"
	"strings"
)

func init() {
	payloadDescriber = describePayload
}

// describePayload renders the dynamic type of each transferred value,
// e.g. "(int, string)". It exists only in debug builds: walking every
// value's reflect.Type on every switch is a cost worth paying only when
// diagnosing a mismatch, not on every production switch.
func describePayload(values []any) string {
	if len(values) == 0 {
		return "()"
	}
	names := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			names[i] = "<nil>"
			continue
		}
		names[i] = reflect.TypeOf(v).String()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
