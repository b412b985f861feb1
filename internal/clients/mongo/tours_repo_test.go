package mongo

import (
	"testing"

	"trailhead/internal/services/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestGuideDocRef(t *testing.T) {
	id := bson.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":   id,
		"name":  "Sarah Lund",
		"photo": "guide-2.jpg",
		"role":  "lead-guide",
	})
	require.NoError(t, err)

	var doc guideDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))

	ref := doc.ref()
	assert.Equal(t, id, ref.ID)
	assert.Equal(t, "Sarah Lund", ref.Name)
	assert.Equal(t, "guide-2.jpg", ref.Photo)
	assert.Equal(t, auth.RoleLeadGuide, ref.Role)
}
