// Package bindle holds the Bindle invoice model shared by the expander, the
// registry client and the output writers.
//
// An invoice names a bindle (name plus semantic version), lists the parcels it
// is made of, and declares the groups those parcels can be members of. The
// package also parses registry bindle ids and encodes invoices as TOML or
// JSON.
package bindle
