// SPDX-License-Identifier: AGPL-3.0-or-later

package errkind

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("exit status 128")
	err := E(HistoryFetchFailed, "git log", "src/a.ts", cause)

	wrapped := fmt.Errorf("checking docs/a.md: %w", err)

	assert.Equal(t, HistoryFetchFailed, KindOf(wrapped))
	assert.True(t, Is(wrapped, HistoryFetchFailed))
	assert.False(t, Is(wrapped, NotARepository))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, Unknown, KindOf(cause))
	assert.False(t, Is(nil, Unknown))
}

func TestError_Message(t *testing.T) {
	err := E(InvalidPattern, "compile ignore pattern", "([", errors.New("missing closing ]"))
	assert.Equal(t, `compile ignore pattern: invalid pattern "([": missing closing ]`, err.Error())

	assert.Equal(t, "not a repository", E(NotARepository, "", "", nil).Error())
}
