// Package expander turns a validated HIPPOFACTS manifest into a Bindle
// invoice.
//
// Every handler becomes one group and one handler-module parcel. Local
// modules are hashed from disk; external modules are resolved against a
// registry invoice and reuse the remote digest. Each handler's file patterns
// are globbed under the manifest directory and every match becomes an asset
// parcel that is a member of the handler's group. Parcels with the same
// digest and name are merged into one.
package expander
