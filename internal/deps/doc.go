// Package deps resolves the external binaries a run needs before any file is
// touched.
package deps
