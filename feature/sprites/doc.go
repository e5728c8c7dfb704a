// Package sprites is the concrete sprite registry: integer sprite ids mapped to
// catalog assets.
//
// Id 0 holds the default sprite and id 3000 the default portrait; lookups for
// missing or unresolved ids fall back to them.
//
// Service ties a registry.Registry[*catalog.Asset] to a PersistentStore and a
// catalog.Resolver and is what the command line tooling drives.
package sprites
