// Package testsupport builds temp-directory configs, fake codec binaries, and
// sized file fixtures for tests across the module.
package testsupport
