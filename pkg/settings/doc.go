// Package settings stores the user-editable configuration pages of the scene
// widgets and resolves them into typed values.
//
// A Page declares its fields and their defaults. Stored pages are flat
// records (journal page -> key -> value), saved wholesale and validated
// against a JSON schema generated from the page. Resolution layers an
// optional override record over the stored page over the page defaults and
// keeps provenance for every key:
//
//	Store -> Resolver.Resolve -> Stack.Merge -> *Resolved -> Decode[T]
//
// A stored page that no longer validates is ignored with a warning so the
// widgets keep working on defaults.
package settings
