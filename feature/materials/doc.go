// Package materials exposes material binding sessions over HTTP.
//
// One Service owns one binding session: an engine with its change detector and guard,
// wired to an import configuration source, the undo journal and the preview cache.
// Calls are serialized by the service, so the binding core sees a single control thread.
//
// A session that is dirty when it would be replaced or closed is only torn down when
// the request says how to settle it, with on_dirty=commit or on_dirty=revert. Without
// it the request fails with 409 and the session is left as it was. abort=true settles
// the edits but stops before opening the next asset.
//
// # HTTP Endpoints
//
//   - GET    /materials/imports        : List stored import configurations.
//   - GET    /materials/preview?asset= : Read-only bindings of one asset (cached).
//   - GET    /materials/session        : Current session.
//   - POST   /materials/session        : Open a session (supports ?on_dirty=, ?abort=).
//   - DELETE /materials/session        : Close the session (supports ?on_dirty=).
//   - PUT    /materials/session/slots  : Bind or clear one slot.
//   - POST   /materials/session/commit : Keep the edits.
//   - POST   /materials/session/revert : Discard the edits.
//   - POST   /materials/undo, /redo    : Step the binding history.
//
// A configuration that cannot be read answers 404 with "no data available".
package materials
