package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"countries/pkg/model"
)

// projectionFor renders the excluded fields as a Mongo exclusion projection.
// A nil result means the full document is returned.
func projectionFor(opts model.ExcludeOptions) bson.D {
	fields := model.ResolveProjection(opts)
	if len(fields) == 0 {
		return nil
	}

	projection := make(bson.D, 0, len(fields))
	for _, f := range fields {
		projection = append(projection, bson.E{Key: f, Value: 0})
	}
	return projection
}
