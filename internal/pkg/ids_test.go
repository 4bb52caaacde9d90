package pkg_test

import (
	"testing"

	"Parking/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id := pkg.NewID()

	parsed, err := pkg.ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = pkg.ParseID("")
	assert.Error(t, err)
	_, err = pkg.ParseID("not-an-id")
	assert.Error(t, err)
}

func TestOptionalIDs(t *testing.T) {
	got, err := pkg.ParseIDPtr(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	empty := ""
	got, err = pkg.ParseIDPtr(&empty)
	require.NoError(t, err)
	assert.Nil(t, got)

	bad := "xyz"
	_, err = pkg.ParseIDPtr(&bad)
	assert.Error(t, err)

	id := pkg.NewID()
	col := pkg.IDPtrString(&id)
	require.NotNil(t, col)
	assert.Equal(t, &id, pkg.ParseIDColumn(col))
	assert.Nil(t, pkg.ParseIDColumn(&bad))
	assert.Nil(t, pkg.IDPtrString(nil))
}
