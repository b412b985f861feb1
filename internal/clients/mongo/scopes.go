package mongo

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Query scopes. The original design applied these as implicit hooks on every
// find; here they are explicit decorators that the repositories compose into
// each unprivileged retrieval, so any privileged path simply skips them.

// WithActiveOnly restricts a users filter to records not soft-deleted.
// $ne (rather than active: true) keeps legacy records without the flag
// visible.
func WithActiveOnly(filter bson.M) bson.M {
	filter["active"] = bson.M{"$ne": false}
	return filter
}

// WithNonSecret restricts a tours filter to non-secret tours.
func WithNonSecret(filter bson.M) bson.M {
	filter["secret"] = bson.M{"$ne": true}
	return filter
}

// NonSecretPipeline prefixes an aggregation with the secret-tour exclusion,
// mirroring WithNonSecret for pipelines.
func NonSecretPipeline(stages ...bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "secret", Value: bson.D{{Key: "$ne", Value: true}}}}}},
	}
	return append(pipeline, stages...)
}
