// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for obfuscated
// string containers.
//
// Configuration is loaded from a single file specified by either the
// SECURESTRING_CONFIG environment variable (via [Load]) or an explicit
// path (via [LoadFile]). There are no fallbacks and no automatic file
// search.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production defaults are stricter: the
// allocator is "locked" and strings are thread-safe unless the file's
// production section says otherwise.
//
// Key exports:
//
//   - [Config] -- master struct with the Strings section
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other packages in this module. The
// obfuscated package turns a [StringsConfig] into container options.
package config
