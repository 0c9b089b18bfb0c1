// Package hwm implements high-water-mark (HWM) value objects used to track
// incremental extraction progress in ETL pipelines.
//
// An HWM pairs a typed value with the identity of what it tracks (a table
// column or a remote folder) and the process which owns it. HWMs are
// immutable: every update returns a new instance and the receiver is left
// untouched, so an HWM can be passed around and compared freely.
//
// Column HWMs hold a single ordered scalar:
//
//	column, _ := types.NewColumn("id")
//	table, _ := types.ParseTable("mydb.mytable")
//	h, _ := hwm.NewIntHWM(column, table, hwm.WithValue(5))
//	h, _ = h.Add(3)
//	h.SerializeValue() // "8"
//
// File list HWMs hold the set of files already handled in a remote folder:
//
//	folder, _ := types.ParseRemoteFolder("/data@ftp://host")
//	files, _ := hwm.NewFileListHWM(folder, hwm.WithValue([]string{"a.csv", "b/c.csv"}))
//	files.Covers("/data/a.csv") // true
//
// Key/value HWMs hold an integer per key, such as topic partition offsets,
// and only move each key forward.
//
// Every HWM serializes to a Record carrying a "type" discriminator. The
// package keeps a registry of known types so that Deserialize can rebuild the
// right concrete HWM from a Record.
package hwm
