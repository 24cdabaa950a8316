// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

// Genre is one entry of /genre/movie/list.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GenreList is the /genre/movie/list response.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// GenreMap converts the list to id -> name.
func (l *GenreList) GenreMap() map[int64]string {
	m := make(map[int64]string, len(l.Genres))
	for _, g := range l.Genres {
		m[g.ID] = g.Name
	}
	return m
}

// Movie is one result of /movie/popular.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	Adult            bool    `json:"adult"`
	GenreIDs         []int64 `json:"genre_ids"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language"`
}

// PopularPage is the /movie/popular response.
type PopularPage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// errorBody is TMDB's error envelope.
type errorBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
