package main

import (
	"testing"

	"bookcatalog/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	year := func(y int) *int { return &y }
	books := []catalog.Book{
		{ID: 1, Title: "War and Peace", Author: "Leo Tolstoy", Year: year(1869)},
		{ID: 2, Title: "Anna Karenina", Author: "Leo Tolstoy", Year: year(1878)},
		{ID: 3, Title: "The Master and Margarita", Author: "Mikhail Bulgakov", Year: year(1967)},
		{ID: 4, Title: "Pnin", Author: "Vladimir Nabokov"},
	}

	stats := computeStats(books)

	assert.Equal(t, 4, stats.TotalBooks)
	assert.Equal(t, 3, stats.AuthorsCount)
	require.NotNil(t, stats.OldestYear)
	assert.Equal(t, 1869, *stats.OldestYear)
	require.NotNil(t, stats.NewestYear)
	assert.Equal(t, 1967, *stats.NewestYear)
	assert.Equal(t, map[string]int{
		"Leo Tolstoy":      2,
		"Mikhail Bulgakov": 1,
		"Vladimir Nabokov": 1,
	}, stats.BooksPerAuthor)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil)

	assert.Equal(t, 0, stats.TotalBooks)
	assert.Equal(t, 0, stats.AuthorsCount)
	assert.Nil(t, stats.OldestYear)
	assert.Nil(t, stats.NewestYear)
	assert.Empty(t, stats.BooksPerAuthor)
}
