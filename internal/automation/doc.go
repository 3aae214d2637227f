// Package automation turns user-facing automation drafts into hub-native
// automation configurations.
//
// A draft is validated (Validate), checked against device capabilities by the
// caller, and compiled (Compile) into a Config. Config is also the normalized
// shape of configurations read back from the hub (ParseConfig), including ones
// this package did not produce.
package automation
