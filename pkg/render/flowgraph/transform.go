package flowgraph

import (
	"strings"
	"unicode"
)

// CleanPort turns a port name into an edge label: upper-cased with every
// '.' removed. CleanPort(CleanPort(p)) == CleanPort(p).
func CleanPort(port string) string {
	return strings.ReplaceAll(strings.ToUpper(port), ".", "")
}

// CleanID strips all whitespace from a process id to form a drawing node
// id. Two ids differing only in whitespace map to the same drawing node.
// Literal and boundary nodes use the ids data<i> and export<name>, so a
// process whose cleaned id matches one of those shares its drawing node too:
// the canvas merges the attributes and the later literal or boundary node
// wins.
func CleanID(id string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, id)
}
