// Package item holds the catalog domain: the Item record, write payload validation,
// the filter/paginate query used by the read endpoints, the aggregate statistics and
// id assignment.
//
// Everything here is pure and allocation-conscious; caching and persistence live in
// the repositorycache and store packages.
package item
