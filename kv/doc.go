// Package kv layers a separately-chained string-to-string hash map on top
// of a blob.Store: keys and values share one blob record's payload, and
// bucket chains are threaded through a small header stored alongside the
// key.
//
// # Usage Example
//
//	m, err := kv.New(1 << 20)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := m.Put("name", []byte("ada")); err != nil {
//		log.Fatal(err)
//	}
//	v := m.Get("name")
//	m.Erase("name")
//
// Like blob.Store, a []byte returned by Get, GetIndex or PutUninitialized
// is only valid until the
// next mutating call.
package kv
