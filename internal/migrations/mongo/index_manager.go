package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"countries/pkg/config"
	"countries/pkg/logger"
	"countries/pkg/model"
)

const (
	TextIndexName = "name_text"

	// collationStrength matches the strength used by collation lookups so
	// the planner can serve them from these indexes.
	collationStrength = 2
)

var ErrIndexMaintenance = errors.New("index maintenance failed")

// IndexManager creates the indexes country lookups depend on. It only ever
// adds missing indexes and never drops or rebuilds existing ones.
type IndexManager struct {
	collection *mongo.Collection
	collation  *options.Collation
	log        *logger.Logger
}

func NewIndexManager(cfg *config.Config) *IndexManager {
	coll := cfg.Client.Mongo.
		Database(cfg.MongoDatabaseName).
		Collection(cfg.MongoCollectionName)
	return NewIndexManagerForCollection(coll, cfg.CollationLocale, cfg.Log)
}

func NewIndexManagerForCollection(coll *mongo.Collection, locale string, log *logger.Logger) *IndexManager {
	return &IndexManager{
		collection: coll,
		collation:  &options.Collation{Locale: locale, Strength: collationStrength},
		log:        log,
	}
}

// Run applies the default plan: one collated index per lookup field and the
// text index used by name lookups.
func (m *IndexManager) Run(ctx context.Context) error {
	m.log.Info("Ensuring country indexes", "collection", m.collection.Name())

	created, err := m.EnsureFieldIndexes(ctx, model.IndexedLookupFields())
	if err != nil {
		return err
	}

	textCreated, err := m.EnsureTextIndex(ctx, []string{model.FieldName.Key()}, TextIndexName)
	if err != nil {
		return err
	}
	if textCreated {
		created = append(created, TextIndexName)
	}

	m.log.Info("Country indexes ensured", "created", created, "created_count", len(created))
	return nil
}

func fieldIndexName(field string) string {
	return field + "_1"
}

// EnsureFieldIndexes creates an ascending single-field index named
// "<field>_1" for every field that does not have one yet, and returns the
// names it created.
func (m *IndexManager) EnsureFieldIndexes(ctx context.Context, fields []string) ([]string, error) {
	existing, err := m.existingIndexes(ctx)
	if err != nil {
		return nil, err
	}

	var models []mongo.IndexModel
	var names []string
	for _, field := range fields {
		name := fieldIndexName(field)
		if _, ok := existing[name]; ok {
			m.log.Debug("Index already exists", "index", name)
			continue
		}
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetName(name).SetCollation(m.collation),
		})
		names = append(names, name)
	}

	if len(models) == 0 {
		return nil, nil
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, models); err != nil {
		return nil, fmt.Errorf("%w: creating %v: %w", ErrIndexMaintenance, names, err)
	}

	for _, name := range names {
		m.log.Info("Created index", "index", name)
	}
	return names, nil
}

// EnsureTextIndex creates a text index over fields under the given name
// unless an index with that name exists. An existing index is left as is even
// when its keys differ.
func (m *IndexManager) EnsureTextIndex(ctx context.Context, fields []string, name string) (bool, error) {
	existing, err := m.existingIndexes(ctx)
	if err != nil {
		return false, err
	}

	if spec, ok := existing[name]; ok {
		if !sameTextKeys(spec, fields) {
			m.log.Warn("Text index exists with a different definition, leaving it untouched",
				"index", name,
				"fields", fields,
			)
		}
		return false, nil
	}

	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: "text"})
	}

	// "none" disables stemming and stop words so normalized country names
	// match on every token.
	opts := options.Index().SetName(name).SetDefaultLanguage("none")
	if _, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts}); err != nil {
		return false, fmt.Errorf("%w: creating %s: %w", ErrIndexMaintenance, name, err)
	}

	m.log.Info("Created text index", "index", name, "fields", fields)
	return true, nil
}

type indexSpec struct {
	Name    string         `bson:"name"`
	Key     bson.D         `bson:"key"`
	Weights map[string]int `bson:"weights,omitempty"`
}

func (m *IndexManager) existingIndexes(ctx context.Context) (map[string]indexSpec, error) {
	cursor, err := m.collection.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing indexes: %w", ErrIndexMaintenance, err)
	}
	defer cursor.Close(ctx)

	var specs []indexSpec
	if err := cursor.All(ctx, &specs); err != nil {
		return nil, fmt.Errorf("%w: decoding indexes: %w", ErrIndexMaintenance, err)
	}

	existing := make(map[string]indexSpec, len(specs))
	for _, s := range specs {
		existing[s.Name] = s
	}
	return existing, nil
}

// Text indexes report their fields through weights rather than key.
func sameTextKeys(spec indexSpec, fields []string) bool {
	if len(spec.Weights) != len(fields) {
		return false
	}
	for _, f := range fields {
		if _, ok := spec.Weights[f]; !ok {
			return false
		}
	}
	return true
}
