// Package farm holds the owned farm records: crops, livestock with their
// history, equipment and employees. Every record carries a single owner in
// created_by and is subject to the access predicate.
package farm
