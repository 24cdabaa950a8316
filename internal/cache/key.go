// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/goccy/go-json"
)

// Key families.
const (
	PrefixMovieList = "movies:list:"
	PrefixMovieItem = "movies:item:"
	KeyTMDBGenres   = "tmdb:genres"
)

// GenerateKey returns prefix followed by the hex of the first 16 bytes of the
// SHA-256 of params' JSON encoding. Struct fields encode in declaration order,
// so equal values always produce equal keys.
func GenerateKey(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s%v", prefix, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s%x", prefix, hash[:16])
}

// MovieItemKey returns the single-movie key for id.
func MovieItemKey(id string) string {
	return PrefixMovieItem + id
}
