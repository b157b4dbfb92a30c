// Package provider defines credential sources: the ways sluice obtains an
// aws.Config whose credentials can call Bedrock.
//
// Sources register themselves by name (task-role, roles-anywhere) from their
// package init and are looked up with Get or Lookup. A source's Load returns
// a Session that owns any temporary material it created; callers must Close
// it once the invocation is done.
package provider
