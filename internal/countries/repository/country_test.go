package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	countrieserrors "countries/internal/countries/errors"
	"countries/pkg/model"
)

const testNS = "countries.countries"

func franceDoc() bson.D {
	return bson.D{
		{Key: "name", Value: "France"},
		{Key: "capital", Value: "Paris"},
		{Key: "code", Value: "FR"},
		{Key: "region", Value: "Europe"},
		{Key: "subregion", Value: "Western Europe"},
		{Key: "states", Value: bson.A{bson.D{{Key: "name", Value: "Brittany"}, {Key: "code", Value: "BRE"}}}},
	}
}

func germanyDoc() bson.D {
	return bson.D{
		{Key: "name", Value: "Germany"},
		{Key: "capital", Value: "Berlin"},
		{Key: "code", Value: "DE"},
		{Key: "region", Value: "Europe"},
	}
}

func TestProjectionFor(t *testing.T) {
	tests := []struct {
		name string
		opts model.ExcludeOptions
		want bson.D
	}{
		{name: "nothing excluded", opts: model.ExcludeOptions{}, want: nil},
		{
			name: "states only",
			opts: model.ExcludeOptions{ExcludeStates: true},
			want: bson.D{{Key: "states", Value: 0}},
		},
		{
			name: "cities only",
			opts: model.ExcludeOptions{ExcludeCities: true},
			want: bson.D{{Key: "cities", Value: 0}},
		},
		{
			name: "both",
			opts: model.ExcludeOptions{ExcludeStates: true, ExcludeCities: true},
			want: bson.D{{Key: "states", Value: 0}, {Key: "cities", Value: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, projectionFor(tt.opts))
		})
	}
}

func TestFindAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns every document without cities", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, franceDoc(), germanyDoc()))

		countries, err := repo.FindAll(context.Background(), model.ExcludeOptions{})
		require.NoError(mt, err)
		require.Len(mt, countries, 2)
		assert.Equal(mt, "FR", countries[0].Code)
		assert.Len(mt, countries[0].States, 1)

		cmd := mt.GetStartedEvent().Command
		projection := cmd.Lookup("projection").Document()
		assert.Equal(mt, int32(0), projection.Lookup("cities").Int32())
		_, err = projection.LookupErr("states")
		assert.Error(mt, err, "states must stay in the projection when not excluded")
	})

	mt.Run("empty collection yields empty slice", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		countries, err := repo.FindAll(context.Background(), model.ExcludeOptions{})
		require.NoError(mt, err)
		assert.NotNil(mt, countries)
		assert.Empty(mt, countries)
	})

	mt.Run("store failure is propagated", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "unknown operator",
		}))

		countries, err := repo.FindAll(context.Background(), model.ExcludeOptions{})
		require.Error(mt, err)
		assert.Nil(mt, countries)

		var cmdErr mongo.CommandError
		assert.ErrorAs(mt, err, &cmdErr)
	})
}

func TestFindOneBy(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("capital uses collation equality", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, franceDoc()))

		country, err := repo.FindOneBy(context.Background(), model.FieldCapital, "paris", model.ExcludeOptions{ExcludeStates: true})
		require.NoError(mt, err)
		require.NotNil(mt, country)
		assert.Equal(mt, "France", country.Name)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "paris", cmd.Lookup("filter", "capital").StringValue())
		assert.Equal(mt, "en", cmd.Lookup("collation", "locale").StringValue())
		assert.Equal(mt, int32(collationStrength), cmd.Lookup("collation", "strength").Int32())
		assert.Equal(mt, int32(0), cmd.Lookup("projection", "states").Int32())
		_, err = cmd.Lookup("projection").Document().LookupErr("cities")
		assert.Error(mt, err, "single lookups keep cities unless asked")
	})

	mt.Run("name uses normalized text search", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, franceDoc()))

		_, err := repo.FindOneBy(context.Background(), model.FieldName, "Côte D'Ivoire (Ivory Coast)", model.ExcludeOptions{})
		require.NoError(mt, err)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "cote d ivoire ivory coast", cmd.Lookup("filter", "$text", "$search").StringValue())
		assert.Equal(mt, "textScore", cmd.Lookup("sort", "score", "$meta").StringValue())
		_, err = cmd.LookupErr("collation")
		assert.Error(mt, err, "text queries must not carry a collation")
		_, err = cmd.LookupErr("projection")
		assert.Error(mt, err, "no projection when nothing is excluded")
	})

	mt.Run("absent document is nil without error", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		country, err := repo.FindOneBy(context.Background(), model.FieldCapital, "Atlantis", model.ExcludeOptions{})
		assert.NoError(mt, err)
		assert.Nil(mt, country)
	})

	mt.Run("store failure is not absence", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    96,
			Name:    "OperationFailed",
			Message: "operation failed",
		}))

		country, err := repo.FindOneBy(context.Background(), model.FieldCapital, "Paris", model.ExcludeOptions{})
		assert.Error(mt, err)
		assert.Nil(mt, country)
	})

	mt.Run("unknown field never reaches the store", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")

		_, err := repo.FindOneBy(context.Background(), model.LookupField(42), "x", model.ExcludeOptions{})
		assert.ErrorIs(mt, err, countrieserrors.ErrInvalidField)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestFindAllBy(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("region match forces cities out", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, franceDoc(), germanyDoc()))

		opts := model.ExcludeOptions{ExcludeCities: false}
		countries, err := repo.FindAllBy(context.Background(), model.FieldRegion, "europe", opts)
		require.NoError(mt, err)
		assert.Len(mt, countries, 2)
		assert.False(mt, opts.ExcludeCities, "caller options must not be mutated")

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "europe", cmd.Lookup("filter", "region").StringValue())
		assert.Equal(mt, int32(0), cmd.Lookup("projection", "cities").Int32())
		assert.Equal(mt, "en", cmd.Lookup("collation", "locale").StringValue())
	})

	mt.Run("no match yields empty slice", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		countries, err := repo.FindAllBy(context.Background(), model.FieldRegion, "Nonexistent Region", model.ExcludeOptions{})
		require.NoError(mt, err)
		assert.NotNil(mt, countries)
		assert.Empty(mt, countries)
	})

	mt.Run("subregion with both exclusions", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, germanyDoc()))

		_, err := repo.FindAllBy(context.Background(), model.FieldSubregion, "Western Europe", model.ExcludeOptions{ExcludeStates: true})
		require.NoError(mt, err)

		projection := mt.GetStartedEvent().Command.Lookup("projection").Document()
		assert.Equal(mt, int32(0), projection.Lookup("states").Int32())
		assert.Equal(mt, int32(0), projection.Lookup("cities").Int32())
	})

	mt.Run("unknown field is rejected", func(mt *mtest.T) {
		repo := newCountryRepository(mt.Coll, "en")

		_, err := repo.FindAllBy(context.Background(), model.LookupField(0), "x", model.ExcludeOptions{})
		assert.ErrorIs(mt, err, countrieserrors.ErrInvalidField)
	})
}
