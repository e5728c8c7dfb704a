// Package registry maps small integer ids to lazily resolved external assets,
// partitioned into labels that each own a contiguous sub-range of the id space.
//
// # Architecture
//
// The package is built from a few small parts:
//
// 1. Codec: Encode and Decode turn an Entry into the flat
//    "filename|reference|label1,label2" record and back.
//
// 2. LabelTable: ordered label names with starting indices. Scope flags
//    (displayed, import, management) live in a Preferences store.
//
// 3. Registry: the owner of every Entry of one type. It allocates ids, answers
//    lookups and runs the reconciliation algorithms (reapply labels, import,
//    reference repair, address rename).
//
// 4. Gate and Driver: Gate admits one initialize pass at a time per registry and
//    coalesces concurrent callers into it. Driver runs the pass: load the
//    persisted record, decode, then resolve every reference concurrently.
//
// 5. Adapter: reads and writes the persisted Record through a PersistentStore.
//
// # Concurrency
//
// Lookups are safe from any goroutine. Mutating operations (AddEntry, Import,
// ReapplyAllLabels, Set, Remove) must be serialized by the caller and must not
// overlap an initialize pass.
//
// # Usage Example
//
//	labels := registry.NewLabelTable("sprites", prefs)
//	reg := registry.New[*catalog.Asset]("sprites", labels, logger)
//	driver := registry.NewDriver(reg, registry.NewAdapter(store, logger), resolver, registry.DriverOptions{})
//
//	if _, err := driver.Initialize(ctx); err != nil {
//	    return err
//	}
//	asset, ok := reg.Get(42)
package registry
