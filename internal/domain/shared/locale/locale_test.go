package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguageMatchesRegionalTags(t *testing.T) {
	cases := map[string]string{
		"en":    "en",
		"en-US": "en",
		"am_ET": "am",
		"FR-ca": "fr",
		"sw-KE": "sw",
	}
	for raw, want := range cases {
		got, err := ParseLanguage(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseLanguageRejectsUnsupported(t *testing.T) {
	for _, raw := range []string{"", "xx", "pl", "!!"} {
		_, err := ParseLanguage(raw)
		assert.ErrorIs(t, err, ErrUnsupportedLanguage, raw)
	}
}

func TestLanguagesTable(t *testing.T) {
	list := Languages()
	assert.Len(t, list, 30)
	assert.Equal(t, DefaultLanguage, list[0].Code)
	ar, ok := Lookup("AR")
	require.True(t, ok)
	assert.True(t, ar.RTL)
}
