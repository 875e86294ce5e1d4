package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackfillReport_Embedded(t *testing.T) {
	r := BackfillReport{
		Kinds: []KindProgress{
			{Kind: SourceKindPost, Pending: 4, Embedded: 4},
			{Kind: SourceKindDocument, Pending: 5, Embedded: 2},
		},
	}

	assert.Equal(t, 6, r.Embedded())
	assert.True(t, r.Succeeded())

	r.FailedKind = SourceKindDocument
	r.Error = "embedding service error: status 500"
	assert.False(t, r.Succeeded())
}

func TestBackfillReport_Empty(t *testing.T) {
	var r BackfillReport
	assert.Zero(t, r.Embedded())
	assert.True(t, r.Succeeded())
}
