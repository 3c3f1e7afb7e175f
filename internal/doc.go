// Package internal contains private implementation details for the
// objstore module. These packages are not intended for external use and
// may change without notice.
//
// The internal packages are organized as follows:
//   - signer: request signing (Signature Version 4)
//   - planner: multipart part layout and size limits
//   - retry: backoff policy and transient-error classification
//   - rest: the HTTP seam every operation flows through
//   - transfer: multipart upload orchestration
//   - sync: directory synchronization
//   - validation: input validation logic
//   - pool: transfer buffer reuse
//   - testutil: shared test fixtures
package internal
