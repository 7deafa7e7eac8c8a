package runtime

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_LoadCensoredWords(t *testing.T) {
	req := require.New(t)

	data, err := LoadCensoredWords()
	req.NoError(err)
	req.NotEmpty(data.Words)

	// Each shipped dictionary registers its language.
	req.Contains(data.Languages, "en")
	req.Contains(data.Languages, "fr")

	// Lines are trimmed and deduplicated.
	seen := make(map[string]struct{}, len(data.Words))
	for _, w := range data.Words {
		req.NotEmpty(w)
		req.Equal(w, strings.TrimSpace(w))
		_, dup := seen[w]
		req.False(dup, "duplicate word %q", w)
		seen[w] = struct{}{}
	}
}
