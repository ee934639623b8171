// Package loader registers and loads application features.
//
// Each feature implements Feature and registers its routes when loaded. The Manager
// loads enabled features in registration order and stops at the first failure.
//
//	mgr := loader.NewManager()
//	mgr.Register(materials.NewFeature(svc))
//	loaded, err := mgr.LoadAll(app)
package loader
