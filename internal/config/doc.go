// Package config defines the format-agnostic configuration model for the
// application: block-type definitions, workspace options and renderer
// constants, along with the Loader interface that fills it from a concrete
// source.
//
// The `config.Model` is the single source of truth for the `registry` and
// `app` packages. The HCL implementation lives in the manifest package.
package config
