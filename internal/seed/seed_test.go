package seed

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/notflix/internal/domain"
	"github.com/Clark-Hu/notflix/internal/memory"
)

const catalogue = `[
  {"tt_id": "tt0111161", "title": "The Shawshank Redemption", "publish_date": "1994-10-14", "length": 142, "director": "Frank Darabont"},
  {"tt_id": "tt0068646", "title": "The Godfather", "publish_date": "1972-03-24T00:00:00Z", "director": "Francis Ford Coppola", "description": "Family business."}
]`

var quiet = log.New(io.Discard, "", 0)

func TestDecode(t *testing.T) {
	movies, err := Decode(strings.NewReader(catalogue))
	require.NoError(t, err)
	require.Len(t, movies, 2)
	require.Equal(t, "tt0111161", movies[0].TTID)
	require.Equal(t, time.Date(1994, 10, 14, 0, 0, 0, 0, time.UTC), movies[0].PublishDate)
	require.Equal(t, 142, movies[0].Length)
	require.Equal(t, time.Date(1972, 3, 24, 0, 0, 0, 0, time.UTC), movies[1].PublishDate)
	require.Empty(t, movies[1].Ratings)
}

func TestDecodeRejects(t *testing.T) {
	tests := map[string]string{
		"not json":     `{`,
		"missing id":   `[{"title": "x", "publish_date": "2000-01-01"}]`,
		"missing date": `[{"tt_id": "tt1", "title": "x"}]`,
		"bad date":     `[{"tt_id": "tt1", "title": "x", "publish_date": "01/01/2000"}]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(raw))
			require.Error(t, err)
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	movies, err := Decode(strings.NewReader(catalogue))
	require.NoError(t, err)

	n, err := Apply(ctx, st.Movies(), movies, quiet)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = Apply(ctx, st.Movies(), movies, quiet)
	require.NoError(t, err)
	require.Zero(t, n)

	listed, err := st.Movies().List(ctx, domain.Page{})
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

type failingCreator struct{ after int }

func (f *failingCreator) Create(context.Context, domain.Movie) (bool, error) {
	if f.after == 0 {
		return false, errors.New("disk full")
	}
	f.after--
	return true, nil
}

func TestApplyStopsOnError(t *testing.T) {
	movies, err := Decode(strings.NewReader(catalogue))
	require.NoError(t, err)

	n, err := Apply(context.Background(), &failingCreator{after: 1}, movies, quiet)
	require.ErrorContains(t, err, "insert tt0068646")
	require.Equal(t, 1, n)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogue), 0o644))

	n, err := File(context.Background(), memory.New().Movies(), path, quiet)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = File(context.Background(), memory.New().Movies(), filepath.Join(t.TempDir(), "none.json"), quiet)
	require.Error(t, err)
}
