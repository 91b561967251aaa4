// Package cache holds recently built health reports so that frequent probes
// (load balancers, orchestrators, dashboards) do not hit every dependency on
// every request.
//
// It provides a byte-oriented Cache interface, an in-memory implementation
// with lazy expiry, and a TTL Policy.
package cache
