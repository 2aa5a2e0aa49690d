//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	migrations "countries/internal/migrations/mongo"
	"countries/internal/testutil/containers"
	"countries/pkg/logger"
	"countries/pkg/model"
)

func seedCountries() []any {
	return []any{
		model.Country{
			Name: "Côte D'Ivoire (Ivory Coast)", Capital: "Yamoussoukro", Code: "CI", ISO3: "CIV",
			Region: "Africa", Subregion: "Western Africa",
			States: []model.State{{Name: "Abidjan", Code: "AB", CountryCode: "CI"}},
			Cities: []model.City{{Name: "Abidjan", StateCode: "AB", CountryCode: "CI"}},
		},
		model.Country{
			Name: "France", Capital: "Paris", Code: "FR", ISO3: "FRA",
			Region: "Europe", Subregion: "Western Europe",
			States: []model.State{{Name: "Brittany", Code: "BRE", CountryCode: "FR"}},
			Cities: []model.City{{Name: "Rennes", StateCode: "BRE", CountryCode: "FR"}},
		},
		model.Country{
			Name: "Germany", Capital: "Berlin", Code: "DE", ISO3: "DEU",
			Region: "Europe", Subregion: "Western Europe",
			States: []model.State{{Name: "Bavaria", Code: "BY", CountryCode: "DE"}},
			Cities: []model.City{{Name: "Munich", StateCode: "BY", CountryCode: "DE"}},
		},
	}
}

func TestCountryRepository_Integration(t *testing.T) {
	mc := containers.NewMongoContainer(t)
	coll := mc.Collection(t)
	ctx := context.Background()

	_, err := coll.InsertMany(ctx, seedCountries())
	require.NoError(t, err)

	indexes := migrations.NewIndexManagerForCollection(coll, "en", logger.Discard())
	require.NoError(t, indexes.Run(ctx))

	repo := newCountryRepository(coll, "en")

	t.Run("find all never carries cities", func(t *testing.T) {
		countries, err := repo.FindAll(ctx, model.ExcludeOptions{})
		require.NoError(t, err)
		require.Len(t, countries, 3)
		for _, c := range countries {
			assert.Nil(t, c.Cities)
			assert.NotEmpty(t, c.States)
		}
	})

	t.Run("exclude states is honored", func(t *testing.T) {
		c, err := repo.FindOneBy(ctx, model.FieldCapital, "Paris", model.ExcludeOptions{ExcludeStates: true})
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Nil(t, c.States)
		assert.NotEmpty(t, c.Cities)
	})

	t.Run("capital lookup ignores case", func(t *testing.T) {
		c, err := repo.FindOneBy(ctx, model.FieldCapital, "BERLIN", model.ExcludeOptions{})
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "DE", c.Code)
	})

	t.Run("name lookup tolerates diacritics and punctuation", func(t *testing.T) {
		c, err := repo.FindOneBy(ctx, model.FieldName, "cote d'ivoire", model.ExcludeOptions{})
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "CI", c.Code)
	})

	t.Run("subregion returns every match", func(t *testing.T) {
		countries, err := repo.FindAllBy(ctx, model.FieldSubregion, "western europe", model.ExcludeOptions{})
		require.NoError(t, err)
		assert.Len(t, countries, 2)
	})

	t.Run("unknown region is empty", func(t *testing.T) {
		countries, err := repo.FindAllBy(ctx, model.FieldRegion, "Nonexistent Region", model.ExcludeOptions{})
		require.NoError(t, err)
		assert.Empty(t, countries)
	})

	t.Run("missing capital is absent", func(t *testing.T) {
		c, err := repo.FindOneBy(ctx, model.FieldCapital, "Atlantis", model.ExcludeOptions{})
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("index run is idempotent", func(t *testing.T) {
		created, err := indexes.EnsureFieldIndexes(ctx, model.IndexedLookupFields())
		require.NoError(t, err)
		assert.Empty(t, created)

		textCreated, err := indexes.EnsureTextIndex(ctx, []string{"name"}, migrations.TextIndexName)
		require.NoError(t, err)
		assert.False(t, textCreated)
	})
}
