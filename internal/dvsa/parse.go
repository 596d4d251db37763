package dvsa

import "strings"

// splitNameStatus parses centre link text of the form "Centre Name – Status".
// The separator may be an en dash or a plain hyphen; the last one wins so
// hyphenated centre names stay intact. When no separator is present the
// whole text is the name and the status is unknown.
func splitNameStatus(text string) (string, string) {
	cut, sepLen := -1, 0
	if i := strings.LastIndex(text, "–"); i > cut {
		cut, sepLen = i, len("–")
	}
	if i := strings.LastIndex(text, "-"); i > cut {
		cut, sepLen = i, 1
	}
	if cut < 0 {
		return strings.TrimSpace(text), ""
	}
	name := strings.TrimSpace(text[:cut])
	status := strings.TrimSpace(text[cut+sepLen:])
	if name == "" {
		return strings.TrimSpace(text), ""
	}
	return name, status
}

// trimCentrePrefix strips the DOM id prefix from a centre link id.
func trimCentrePrefix(id string) string {
	return strings.TrimPrefix(id, "centre-name-")
}
