// Package auth decides whether a health request may see per-check detail.
//
// Authentication never changes the HTTP status of a health endpoint. It
// only gates the check list: callers that fail to authenticate receive the
// aggregate status alone. API keys and HMAC-signed JWTs are supported, and
// CompositeAuthenticator accepts either.
package auth
