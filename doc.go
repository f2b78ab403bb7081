// Package session implements the client side of an authentication lifecycle:
// a persisted session store, route guarding, one-shot profile bootstrap, and
// the credential flows (login, registration, OTP verification) that feed it.
//
// Session store:
//   - Store is an explicitly constructed handle, not a global. It rehydrates
//     its Session from a Storage backend once at startup, mirrors every
//     mutation back to that backend, and notifies subscribers after each
//     committed change. Pure transition functions keep the state logic
//     testable without a storage backend.
//
// Readiness gate:
//   - Session.Ready reports whether rehydration has completed. Consumers must
//     not make authentication decisions (redirects, profile fetches) until the
//     first Ready notification; Guard and Bootstrap honor this internally.
//
// Route guarding:
//   - Guard subscribes to a Store and resolves to a waiting or content view,
//     issuing at most one sign-in redirect per unauthorized transition.
//     FramedGuard composes a persistent navigation frame around the same
//     authorization predicate.
//
// Credential flows:
//   - LoginFlow and RegisterFlow talk to the identity provider through Client
//     (or any CredentialClient) and write into the Store only on success.
//     Delayed navigations run through a cancellable Scheduler so teardown
//     never races a pending redirect.
package session
