// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import "context"

// Regex strips comments with extension-keyed patterns and collapses whitespace.
type Regex struct{}

// Normalize implements Normalizer. It never fails.
func (Regex) Normalize(_ context.Context, text, ext string) (string, error) {
	return Canonical(text, ext), nil
}

// Canonical is the comment- and whitespace-insensitive form of text.
func Canonical(text, ext string) string {
	// Removing a block can splice a new comment opener together ("/" + "/*x*/" + "/").
	for {
		next := StripComments(text, ext)
		if next == text {
			break
		}
		text = next
	}
	return collapse(text)
}
