// Package speech turns a selected outfit into a sentence suitable for a voice
// assistant or a notification.
package speech

import (
	"strings"

	"outfitpicker/internal/picker"
)

// JoinList joins items as an English list: "a", "a and b", "a, b, and c".
func JoinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

// phrases maps garment names to their spoken form.
func phrases(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = picker.Phrase(n)
	}
	return out
}

// FromOutfit renders the outfit as speech. Torso and legs come first, then
// headwear, then a reminder for accessories. Feet are left out since running
// shoes go without saying.
func FromOutfit(o *picker.Outfit) string {
	var b strings.Builder

	body := append(phrases(o.Torso), phrases(o.Legs)...)
	if len(body) > 0 {
		b.WriteString("You should wear ")
		b.WriteString(JoinList(body))
		b.WriteString(". ")
	}
	if len(o.Head) > 0 {
		b.WriteString("On your head, you should wear ")
		b.WriteString(JoinList(phrases(o.Head)))
		b.WriteString(". ")
	}
	if len(o.Accessories) > 0 {
		b.WriteString("Don't forget ")
		b.WriteString(JoinList(phrases(o.Accessories)))
		b.WriteString("!")
	}
	return strings.TrimSpace(b.String())
}
