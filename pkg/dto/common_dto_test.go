package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t, 3, NewPaginationMeta(1, 10, 21).TotalPages)
	assert.Equal(t, 2, NewPaginationMeta(2, 10, 20).TotalPages)
	assert.Equal(t, 0, NewPaginationMeta(1, 10, 0).TotalPages)
	assert.Equal(t, 0, NewPaginationMeta(1, 0, 5).TotalPages)
}
