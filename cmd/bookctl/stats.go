package main

import (
	"bookcatalog/internal/catalog"
)

// Stats summarizes the catalog for the stats subcommand.
type Stats struct {
	TotalBooks     int            `json:"total_books"`
	AuthorsCount   int            `json:"authors_count"`
	OldestYear     *int           `json:"oldest_year"`
	NewestYear     *int           `json:"newest_year"`
	BooksPerAuthor map[string]int `json:"books_per_author"`
}

func computeStats(books []catalog.Book) Stats {
	stats := Stats{
		TotalBooks:     len(books),
		BooksPerAuthor: make(map[string]int),
	}

	for _, b := range books {
		stats.BooksPerAuthor[b.Author]++
		if b.Year == nil {
			continue
		}
		if stats.OldestYear == nil || *b.Year < *stats.OldestYear {
			y := *b.Year
			stats.OldestYear = &y
		}
		if stats.NewestYear == nil || *b.Year > *stats.NewestYear {
			y := *b.Year
			stats.NewestYear = &y
		}
	}
	stats.AuthorsCount = len(stats.BooksPerAuthor)
	return stats
}
