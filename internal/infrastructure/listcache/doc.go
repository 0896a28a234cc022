// Package listcache implements the in-process cache for book list query results.
//
// A Store keeps at most Capacity entries. Each entry is an ordered list of book
// summaries with its own TTL. Entries leave the store in four ways:
//   - Invalidate removes one key
//   - Put evicts the oldest inserted key when the store is full (FIFO by default)
//   - Contains/Get drop an entry lazily once its TTL has passed
//   - the background sweeper removes expired entries nobody asked for
//
// Writes elsewhere in the catalog are propagated with NotifyItemDeleted and
// NotifyItemUpdated, which patch the cached lists in place instead of dropping
// them. An item-id index keeps those calls proportional to the number of
// entries that actually reference the item.
//
// Every structural change happens under a single mutex owned by the Store.
package listcache
