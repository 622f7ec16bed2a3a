// Package version implements CocoaPods version precedence and requirements.
//
// Pod versions are dotted numeric segments with an optional pre-release
// suffix ("10.0", "1.2.3", "2.0.0-beta.1"). Comparison follows semantic
// version precedence, extended to any number of numeric segments:
//
//	version.Compare("1.0", "1.0.0")          // 0
//	version.Compare("2.0.0-beta.1", "2.0.0") // -1
//	version.Compare("1.2.3.4", "1.2.3")      // 1
//
// Precedence of pre-release identifiers is delegated to
// [golang.org/x/mod/semver].
//
// Requirements use the operators understood by Podfiles and podspecs
// (=, !=, >, >=, <, <=, ~>):
//
//	r, _ := version.ParseRequirement("~> 10.0")
//	r.Satisfied("10.4.1") // true
//	r.Satisfied("11.0")   // false
package version
