package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	countrieserrors "countries/internal/countries/errors"
	"countries/pkg/config"
	"countries/pkg/model"
	"countries/pkg/sanitizer"
)

// collationStrength 2 compares base letters and diacritics but ignores case.
const collationStrength = 2

type CountryRepository interface {
	FindAll(ctx context.Context, opts model.ExcludeOptions) ([]*model.Country, error)
	FindOneBy(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) (*model.Country, error)
	FindAllBy(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) ([]*model.Country, error)
}

type mongoCountryRepository struct {
	collection *mongo.Collection
	collation  *options.Collation
}

func NewMongoCountryRepository(cfg *config.Config) CountryRepository {
	coll := cfg.Client.Mongo.
		Database(cfg.MongoDatabaseName).
		Collection(cfg.MongoCollectionName)
	return newCountryRepository(coll, cfg.CollationLocale)
}

func newCountryRepository(coll *mongo.Collection, locale string) *mongoCountryRepository {
	return &mongoCountryRepository{
		collection: coll,
		collation:  &options.Collation{Locale: locale, Strength: collationStrength},
	}
}

func (r *mongoCountryRepository) FindAll(ctx context.Context, opts model.ExcludeOptions) ([]*model.Country, error) {
	findOpts := options.Find()
	if p := projectionFor(opts.ForCollection()); p != nil {
		findOpts.SetProjection(p)
	}

	cursor, err := r.collection.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}
	defer cursor.Close(ctx)

	countries := make([]*model.Country, 0)
	if err = cursor.All(ctx, &countries); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}
	return countries, nil
}

func (r *mongoCountryRepository) FindOneBy(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) (*model.Country, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: %s", countrieserrors.ErrInvalidField, field)
	}

	filter, findOpts := r.singleQuery(field, value)
	if p := projectionFor(opts); p != nil {
		findOpts.SetProjection(p)
	}

	var country model.Country
	err := r.collection.FindOne(ctx, filter, findOpts).Decode(&country)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find country by %s: %w", field, err)
	}

	return &country, nil
}

func (r *mongoCountryRepository) FindAllBy(ctx context.Context, field model.LookupField, value string, opts model.ExcludeOptions) ([]*model.Country, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: %s", countrieserrors.ErrInvalidField, field)
	}

	filter, findOpts := r.multiQuery(field, value)
	if p := projectionFor(opts.ForCollection()); p != nil {
		findOpts.SetProjection(p)
	}

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query countries by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	countries := make([]*model.Country, 0)
	if err = cursor.All(ctx, &countries); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}
	return countries, nil
}

// Name lookups go through the text index on the normalized value, best score
// first. Every other field is an exact match under the case-insensitive
// collation.
func (r *mongoCountryRepository) singleQuery(field model.LookupField, value string) (bson.D, *options.FindOneOptions) {
	if field == model.FieldName {
		return textFilter(value), options.FindOne().SetSort(textScoreSort())
	}
	return equalityFilter(field, value), options.FindOne().SetCollation(r.collation)
}

func (r *mongoCountryRepository) multiQuery(field model.LookupField, value string) (bson.D, *options.FindOptions) {
	if field == model.FieldName {
		return textFilter(value), options.Find().SetSort(textScoreSort())
	}
	return equalityFilter(field, value), options.Find().SetCollation(r.collation)
}

func textFilter(value string) bson.D {
	return bson.D{{Key: "$text", Value: bson.D{
		{Key: "$search", Value: sanitizer.Normalize(value)},
		{Key: "$caseSensitive", Value: false},
	}}}
}

func textScoreSort() bson.D {
	return bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}
}

func equalityFilter(field model.LookupField, value string) bson.D {
	return bson.D{{Key: field.Key(), Value: value}}
}
