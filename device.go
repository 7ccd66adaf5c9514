package tsfile

import "strings"

// RenderDeviceID dot-joins a device-identity tuple as built by
// tablet.Tablet.DeviceID: table name followed by tag values, nil meaning
// a null tag. A present-but-empty tag renders as an empty join segment
// ("<table>..<next>"); a null tag renders as the literal "null"
// ("<table>.null.<next>") — spec.md §8's boundary behavior.
func RenderDeviceID(parts []*string) string {
	rendered := make([]string, len(parts))
	for i, p := range parts {
		if p == nil {
			rendered[i] = "null"
			continue
		}
		rendered[i] = *p
	}
	return strings.Join(rendered, ".")
}
