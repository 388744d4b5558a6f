// Package toolchain finds a C compiler and asks it, one process at a time,
// what it accepts.
//
// Discovery (Resolver.Resolve) picks the executable, the invocation builder
// (Resolver.Prepare) adds --target when cross compiling, the capability probe
// (Prober.Populate) tries every -std= value against a scratch source file and
// the trial compiler (Resolver.SelectVariant) returns the first source
// variant that builds. Only exit status is ever inspected.
//
// Nothing here reads the environment; callers pass a config.Config.
package toolchain
