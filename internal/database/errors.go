// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrNotFound is returned when no document matches.
var ErrNotFound = errors.New("document not found")

// DuplicateKeyError is returned when a unique index rejects a write.
type DuplicateKeyError struct {
	Key   string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %s: %s", e.Key, e.Value)
}

// dupKeyPattern matches the server's "dup key: { username: \"neo\" }" suffix.
var dupKeyPattern = regexp.MustCompile(`dup key: \{ ?"?([\w.]+)"?: "?(.*?)"? ?\}`)

// mapError converts driver errors into package errors. Other errors pass through.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return duplicateKeyFrom(err)
	}
	return err
}

func duplicateKeyFrom(err error) *DuplicateKeyError {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if dk := duplicateKeyFromRaw(e); dk != nil {
				return dk
			}
			if dk := parseDuplicateKey(e.Message); dk != nil {
				return dk
			}
		}
	}
	if dk := parseDuplicateKey(err.Error()); dk != nil {
		return dk
	}
	return &DuplicateKeyError{Key: "key", Value: "unknown"}
}

// duplicateKeyFromRaw reads the keyValue document servers attach to E11000 errors.
func duplicateKeyFromRaw(we mongo.WriteError) *DuplicateKeyError {
	if len(we.Raw) == 0 {
		return nil
	}
	rv, err := we.Raw.LookupErr("keyValue")
	if err != nil {
		return nil
	}
	doc, ok := rv.DocumentOK()
	if !ok {
		return nil
	}
	elems, err := doc.Elements()
	if err != nil || len(elems) == 0 {
		return nil
	}
	val := elems[0].Value()
	if s, ok := val.StringValueOK(); ok {
		return &DuplicateKeyError{Key: elems[0].Key(), Value: s}
	}
	return &DuplicateKeyError{Key: elems[0].Key(), Value: val.String()}
}

func parseDuplicateKey(msg string) *DuplicateKeyError {
	m := dupKeyPattern.FindStringSubmatch(msg)
	if m == nil {
		return nil
	}
	return &DuplicateKeyError{Key: m[1], Value: m[2]}
}
