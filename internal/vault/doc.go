// Package vault is the engine facade over the hub/satellite stores. It owns
// request validation, tenant scoping, payload schema checks, bounded conflict
// retries, and the best-effort audit notification that follows every changed
// write.
//
// Error taxonomy: validation failures (*ValidationError, schema rejections)
// surface before anything is written; ErrConflict is retried internally up to
// the configured bound; ErrUnavailable wraps storage failures and guarantees
// no partial state was left behind; ErrNotFound covers reads of entities that
// were never written. Audit sink failures are absorbed inside the bridge and
// never reach callers.
package vault
