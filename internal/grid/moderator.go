package grid

import (
	"regexp"
	"strings"
)

// moderatorPattern captures the text following a "Moderator:" marker up to the
// first comma or newline. A trailing sentence period is trimmed afterwards so
// honorifics such as "Dr." survive intact.
var moderatorPattern = regexp.MustCompile(`(?i)moderator:\s*([^,\n]+)`)

// ExtractModerator pulls a moderator name out of a room's free-text
// description. The upstream data model has no structured moderator field; the
// name is smuggled through the description as "Moderator: Jane Doe". Returns
// false when no marker is present or the captured text is empty.
func ExtractModerator(description string) (string, bool) {
	match := moderatorPattern.FindStringSubmatch(description)
	if match == nil {
		return "", false
	}
	name := strings.TrimSpace(match[1])
	name = strings.TrimSuffix(name, ".")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return name, true
}
