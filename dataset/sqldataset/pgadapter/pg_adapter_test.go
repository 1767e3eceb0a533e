package pgadapter

import (
	"testing"

	"github.com/hafniz/mlcore/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterDialect(t *testing.T) {
	// sql.Open does not connect, so no server is needed
	a, err := New("postgres://localhost/mlcore?sslmode=disable")
	require.NoError(t, err)
	defer a.DB().Close()

	assert.Equal(t, "$1", a.Placeholder(1))
	assert.Equal(t, "$12", a.Placeholder(12))
	assert.Equal(t, `"id" SERIAL PRIMARY KEY`, a.IDColumnDefinition())

	ct, err := a.ColumnType(feature.NewDiscreteFeature("color", nil))
	require.NoError(t, err)
	assert.Equal(t, "TEXT", ct)
	ct, err = a.ColumnType(feature.NewContinuousFeature("x"))
	require.NoError(t, err)
	assert.Equal(t, "DOUBLE PRECISION", ct)
}
