package search

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"newera.app/reentry/internal/entity"
)

func TestBuildResourceDocStripsMarkup(t *testing.T) {
	res := &entity.Resource{
		ID:          4,
		Name:        "Food Bank",
		Description: "<p>Free   groceries</p><br>Mon &amp; Wed",
		City:        "Pittsburgh",
		Tags:        []entity.Tag{{ID: 1, Name: "Food"}, {ID: 2, Name: "Family"}},
		IsActive:    true,
	}

	doc := buildResourceDoc(bluemonday.StrictPolicy(), res)

	assert.Equal(t, uint(4), doc.ID)
	assert.Equal(t, "Free groceries Mon & Wed", doc.Description)
	assert.Equal(t, []string{"Food", "Family"}, doc.Tags)
	assert.True(t, doc.IsActive)
}

func TestParseHitIDs(t *testing.T) {
	ids, err := parseHitIDs([]byte(`{"hits":[{"id":3},{"id":1}],"query":"food"}`))
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1}, ids)

	_, err = parseHitIDs([]byte(`not json`))
	assert.Error(t, err)
}
