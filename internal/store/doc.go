// package store is the settings and content store adapter.
//
// Documents are schemaless JSON objects addressed by [models.DocumentKey].
// Writes are deep merges: patching one date of the dailyMenu document leaves
// every other date and field untouched. Subscribers first receive the current
// snapshot, then every later change, until they unsubscribe.
//
// [Local] fans changes out in-process over a pluggable [Backend]. [Remote]
// speaks to a menuboard server over HTTP and server-sent events.
package store
