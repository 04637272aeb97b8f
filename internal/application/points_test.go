package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-paddock/internal/domain"
)

// node parses src and returns its root value node.
func node(t *testing.T, src string) yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	require.NotEmpty(t, doc.Content)
	return *doc.Content[0]
}

func TestPointsFromNode(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    Points
		wantErr bool
	}{
		{name: "integer", src: "10", want: Points{Scalar: 10, Set: true}},
		{name: "decimal", src: "2.5", want: Points{Scalar: 2.5, Set: true}},
		{name: "negative", src: "-3", want: Points{Scalar: -3, Set: true}},
		{
			name: "object",
			src:  `{"1st": 25, "2nd": 18}`,
			want: Points{Table: map[string]float64{"1st": 25, "2nd": 18}, IsTable: true, Set: true},
		},
		{name: "word", src: "ten", wantErr: true},
		{name: "not finite", src: ".inf", wantErr: true},
		{name: "list", src: "[1, 2]", wantErr: true},
		{name: "object of words", src: "{a: b}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pointsFromNode(node(t, tt.src))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("absent", func(t *testing.T) {
		got, err := pointsFromNode(yaml.Node{})
		require.NoError(t, err)
		assert.False(t, got.Set)
	})
}

func TestPointsFromOverride(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Points
		errMsg string
	}{
		{name: "number", raw: "10", want: Points{Scalar: 10, Set: true}},
		{name: "zero", raw: "0", want: Points{Scalar: 0, Set: true}},
		{
			name: "object",
			raw:  `{"1st":50,"2nd":25}`,
			want: Points{Table: map[string]float64{"1st": 50, "2nd": 25}, IsTable: true, Set: true},
		},
		{name: "not json", raw: "{1st:50}", errMsg: "must be valid JSON"},
		{name: "string", raw: `"10"`, errMsg: "number or JSON object"},
		{name: "object with string", raw: `{"1st":"50"}`, errMsg: `"1st" must be a number`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pointsFromOverride(tt.raw)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckShape(t *testing.T) {
	number := Points{Scalar: 5, Set: true}
	table := Points{Table: map[string]float64{"position": 5}, IsTable: true, Set: true}

	for _, qt := range domain.KnownTypes {
		t.Run(string(qt), func(t *testing.T) {
			assert.NoError(t, checkShape(qt, Points{}), "unset points are always accepted")
			if qt.ExpectsPointsMap() {
				assert.NoError(t, checkShape(qt, table))
				assert.ErrorIs(t, checkShape(qt, number), domain.ErrPointsShape)
			} else {
				assert.NoError(t, checkShape(qt, number))
				assert.ErrorIs(t, checkShape(qt, table), domain.ErrPointsShape)
			}
		})
	}

	assert.NoError(t, checkShape("slider", table))
	assert.NoError(t, checkShape("slider", number))
}
