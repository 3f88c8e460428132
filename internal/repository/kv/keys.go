// Package kv implements the catalog and session repositories on top of a
// storage.Store.
//
// Key layout:
//
//	item:<id>        CBOR domain.QuizItem
//	session:<chatID> CBOR domain.Session
//	catalog:ids      CBOR sorted []uint64 of every stored item id
//
// The prefixes never collide, so both repositories can share one store.
package kv

import "strconv"

const (
	itemPrefix    = "item:"
	SessionPrefix = "session:"
	indexKey      = "catalog:ids"
)

func itemKey(id uint64) []byte {
	return strconv.AppendUint([]byte(itemPrefix), id, 10)
}

func sessionKey(chatID int64) []byte {
	return strconv.AppendInt([]byte(SessionPrefix), chatID, 10)
}
