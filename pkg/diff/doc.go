// Package diff compares two versions of a pod.
//
// # Overview
//
// An [Engine] looks up both versions of a pod, collects the components
// (subspecs, and optionally resolved dependencies) available on each
// platform and returns a [Result] that renders:
//
//   - a markdown table of component names and minimum OS versions ([Result.Table])
//   - a Podfile installing one side ([Result.Podfile])
//   - a structured comparison ([Result.Comparison])
//   - the dependency graph of the newer version ([Result.Graph])
//
// # Usage
//
//	engine := diff.NewEngine(locator, resolver, logger)
//	res, err := engine.Run(ctx, diff.Request{Pod: "Firebase", Version1: "9.0.0", Version2: "10.0.0"})
//	if err != nil {
//	    return err
//	}
//	if res.Warning != "" {
//	    logger.Warn(res.Warning)
//	    return nil
//	}
//	fmt.Print(res.Table())
//
// # Closure policy
//
// With IncludeDependencies set, components come from the resolver. The
// default [ClosureOneHop] keeps the pod's own subspecs, its direct
// dependencies and their direct dependencies; [ClosureFull] reports the
// whole resolved closure.
package diff
