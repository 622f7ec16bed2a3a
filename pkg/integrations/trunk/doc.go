// Package trunk provides a client for the CocoaPods trunk CDN.
//
// The CDN serves three kinds of files:
//
//   - all_pods.txt: every pod name, one per line
//   - all_pods_versions_a_b_c.txt: "Pod/1.0.0/1.1.0" lines for one shard
//   - Specs/a/b/c/Pod/1.0.0/Pod.podspec.json: one published specification
//
// The shard a/b/c is the first three hex digits of md5(pod name); see [Shard].
package trunk
