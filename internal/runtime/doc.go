// Package runtime wires storage and configuration into a single-node
// OneVault instance. Services (the vault facade, HTTP controllers) are built
// on top of a Runtime rather than raw storage handles.
package runtime
