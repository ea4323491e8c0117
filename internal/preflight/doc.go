// Package preflight provides readiness checks for the filesystem paths and
// external binaries a flacify run depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll and CheckSystemDeps before enumerating
//     files. Any failure is a setup error: the run stops with exit status 1
//     before a single file is touched.
//   - The "flacify deps" command uses CheckSystemDeps to display binary
//     availability.
package preflight
