// Package redis caches resolved chunk content in Redis.
//
// Search and the quality harness resolve every hit against the relational
// store. With a cache configured, resolved text is kept under
// "twinsync:chunk:<id>" with a TTL so repeated queries skip the database.
package redis
