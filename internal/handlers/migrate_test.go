package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateDataImportsLegacyNotes(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPatch, "/journal/2024-01-02", `{"content":"kept"}`)

	rec := f.do(t, http.MethodPost, "/migrate", `{"notes":{"2024-01-01":"one","2024-01-02":"legacy","bogus":"x","2024-01-03":"  "}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"migrated":1`)

	all := f.stores.ForUser(1).All(context.Background())
	assert.Equal(t, "one", all["2024-01-01"].Content)
	assert.Equal(t, "kept", all["2024-01-02"].Content)
	assert.Len(t, all, 2)
}

func TestMigrateDataRequiresNotes(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/migrate", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/migrate", `nope`).Code)
}
