// Package preview renders and caches read-only binding previews.
//
// Previews are what the asset browser shows before a configuration is loaded into an
// engine. They are cached per asset with a TTL and rebuilt behind a singleflight group,
// so a burst of requests for the same asset reads the store once.
//
// The Cache satisfies binding.PreviewInvalidator: the store adapter drops an asset's
// preview after every successful write.
package preview
