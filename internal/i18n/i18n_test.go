package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestT(t *testing.T) {
	tr, err := New("it")
	require.NoError(t, err)

	assert.Equal(t, "Oggi", tr.T("it", "today", nil))
	assert.Equal(t, "Today", tr.T("en", "today", nil))
	assert.Equal(t, "Sonno", tr.T("it", "checklist.sleep", nil))
	assert.Equal(t, "Importata nota per 05-01-2024.", tr.T("it", "toasts.importSuccessDesc", map[string]string{"date": "05-01-2024"}))

	// missing in Italian, present in English
	assert.Equal(t, "Tone analysis is not configured.", tr.T("it", "analysis.unavailable", nil))
	// unknown language uses the default
	assert.Equal(t, "Oggi", tr.T("de", "today", nil))
	// unknown key comes back verbatim
	assert.Equal(t, "no.such.key", tr.T("en", "no.such.key", nil))
}

func TestCatalogsShareKeys(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)
	require.NotEmpty(t, tr.ids["it"])
	for key := range tr.ids["it"] {
		_, ok := tr.ids["en"][key]
		assert.True(t, ok, "key %q missing in en", key)
	}
}

func TestMatch(t *testing.T) {
	tr, err := New("it")
	require.NoError(t, err)

	assert.Equal(t, "it", tr.Match(""))
	assert.Equal(t, "en", tr.Match("en-US,en;q=0.9"))
	assert.Equal(t, "it", tr.Match("it-IT"))
	assert.Equal(t, "it", tr.Match("fr-FR"))
	assert.Equal(t, "it", tr.Match(";;;garbage"))
	assert.True(t, tr.Supports("en"))
	assert.False(t, tr.Supports("fr"))
}

func TestNewFallsBackToEnglish(t *testing.T) {
	tr, err := New("klingon")
	require.NoError(t, err)
	assert.Equal(t, "en", tr.Default())
}

func TestNestedKeysAndTemplates(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	assert.Equal(t, "Are you sure?", tr.T("en", "deleteDialog.title", nil))
	assert.Equal(t, "This action is irreversible. It will permanently delete all notes.",
		tr.T("en", "deleteDialog.message", map[string]string{"label": tr.T("en", "deleteDialog.labelAll", nil)}))
	assert.Equal(t, "Migrate 3 note dal formato precedente.", tr.T("it", "toasts.migrated", map[string]string{"count": "3"}))
	assert.Equal(t, "Authentication required.", tr.T("", "errors.unauthorized", nil))
}
