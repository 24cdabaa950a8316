// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package catalog implements the movie query and mutation layer.

Reads go through the response cache:

	movies:list:<hash>   one page of list results, shared by every caller
	movies:item:<id>     one movie

isFavorite is caller specific, so it is never cached; it is applied to a copy
of the page after the cache read.

Every write (create, update, remove, rate) invalidates the list prefix and,
when an id is known, the item key. Invalidation is best effort: failures are
logged and the write still succeeds, with stale entries aging out by TTL.
*/
package catalog
