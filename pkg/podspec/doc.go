// Package podspec models CocoaPods specifications in their JSON form.
//
// CocoaPods trunk publishes every pod version as a .podspec.json document.
// This package decodes those documents into a [Spec] tree (root spec plus
// nested subspecs) and answers the questions the diff engine asks about it:
// which platforms a (sub)spec is available on, what its minimum deployment
// target is, and which pods it depends on.
//
// # Platforms
//
// [Platform] values are canonical lower-case names. [ParsePlatform] accepts
// "macos" as an alias for "osx":
//
//	p, err := podspec.ParsePlatform("iOS") // podspec.IOS
//
// # Inheritance
//
// Subspecs inherit the version, deployment targets and dependencies of
// their parents. A subspec that declares no platforms is available
// wherever its parent is:
//
//	spec, _ := podspec.Parse(data)
//	core := spec.Subspec("Core")
//	target, ok := core.DeploymentTarget(podspec.IOS)
package podspec
