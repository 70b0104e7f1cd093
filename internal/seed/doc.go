// Package seed loads stations and users from a YAML file and registers them through the
// regular command handlers. Registration is idempotent, so the same file can be applied on every start.
package seed
