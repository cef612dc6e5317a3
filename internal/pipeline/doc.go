// Package pipeline assembles the leaf asset tasks into the two top-level
// pipelines and the dev-mode watch bindings.
//
// # Pipelines
//
// "default" (dev) is
//
//	series(clean, copy, images:copy,
//	       parallel(styles, html, svg, sprite, webp),
//	       serve, watch)
//
// and "build" is
//
//	series(clean, copy,
//	       parallel(styles, html, svg, sprite, images:optimize, webp))
//
// "watch" blocks until its context is cancelled, so running "default"
// only returns on a signal or an initial-build failure.
//
// # Usage
//
//	reg := registry.New(registry.WithBus(bus))
//	set, _ := pipeline.Register(reg, pipeline.Config{Env: env, Server: srv})
//	_, err := reg.MustLookup(pipeline.Build).Run(ctx)
package pipeline
