package notes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	store, _, _ := newStore(t, t0)
	ctx := context.Background()

	_, err := store.Save(ctx, "12345678901", "Ligar para o interessado", "", []string{"pendência"}, nil)
	require.NoError(t, err)
	_, err = store.Save(ctx, "55566677788", "Análise concluída", "", []string{"concluido"}, nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"by text", "ligar", []string{"12345678901"}},
		{"accent-insensitive text", "analise", []string{"55566677788"}},
		{"accented query folds too", "análise", []string{"55566677788"}},
		{"by tag without accent", "pendencia", []string{"12345678901"}},
		{"by protocol fragment", "5556667", []string{"55566677788"}},
		{"case-insensitive", "LIGAR", []string{"12345678901"}},
		{"no match", "inexistente", nil},
		{"empty query matches all", "", []string{"12345678901", "55566677788"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Search(ctx, tt.query)
			require.NoError(t, err)

			var ids []string
			for id := range results {
				ids = append(ids, id)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}
