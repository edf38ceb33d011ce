// Package extract defines the contract between host adapters and the core.
//
// An adapter hooks into its framework's request pipeline, captures the data
// the pipeline already has in hand, and exposes it through the Extractor
// interface. The core depends only on this interface; it never imports a
// host framework. The helpers here (content-type check, client IP
// resolution, body decoding policy) exist so every adapter resolves these
// details the same way.
package extract
