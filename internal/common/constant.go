package common

// AuthorizationHeaderName carries the bearer token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// IdempotencyKeyHeaderName carries the client-generated idempotency key on
// story submissions so the server can de-duplicate retried uploads.
const IdempotencyKeyHeaderName = "X-Idempotency-Key"
