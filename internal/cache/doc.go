// Package cache provides TTL byte caches that back the gateway read cache.
//
// Memory keeps entries in a mutex-guarded map and expires them lazily on read;
// nothing sweeps the map in the background. Redis stores entries with SET EX
// under a configurable key prefix so several instances can share one server.
package cache
