// Package hub implements the identity half of OneVault's hub/satellite model:
// deterministic key derivation and the append-only identity registry.
//
// An identity is created exactly once per (entityType, tenantID, businessKey)
// triple, by whichever writer gets there first; later creators receive the
// existing record. Identities are never updated or deleted. Version history
// for an identity lives in package satellite.
package hub
