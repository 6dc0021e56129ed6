// Package store keeps named attribute-set snapshots in a bbolt database.
//
// Each record is stored under its name in a single bucket, encoded with
// MessagePack. Records carry the save time and the snapshot.Snapshot of the
// set; loading a record rebuilds the set through AttributeSet.Add.
package store
