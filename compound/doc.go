// Package compound manages native compound instances: opaque object or
// boxed-record memory identified by a concrete registered type.
//
// The Registry is the host-side collaborator surface: it wraps raw native
// references in host proxies (NewProxy), recovers the raw reference and
// concrete type from a proxy (Extract), and owns the process-wide
// per-type-name disposer table populated by the binding loader. Proxies
// flagged host-owned run their type's disposer exactly once on release.
//
// Lifecycle observers receive created/released events; tests use them to
// verify that N created instances release exactly N references.
package compound
