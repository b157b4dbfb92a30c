// Package aws implements the two credential sources sluice can call Bedrock
// with.
//
// task-role (alias ecs) uses the SDK default credential chain. On ECS the
// chain finds AWS_CONTAINER_CREDENTIALS_RELATIVE_URI and fetches the task
// role's credentials from the container metadata endpoint; elsewhere it falls
// back to environment variables, shared config and IMDS.
//
// roles-anywhere (alias iamra) runs the IAM Roles Anywhere signing helper as
// a credential_process command:
//
//	aws_signing_helper credential-process \
//	    --certificate C --private-key K \
//	    --trust-anchor-arn T --profile-arn P --role-arn R --region X
//
// The helper signs CreateSession with the X.509 private key and prints
// temporary credentials as JSON on stdout. The SDK caches them and reruns the
// helper when they near expiry, so certificate material staged from a secret
// store stays on disk until the session is closed.
//
// Both sources retrieve credentials once inside Load so misconfiguration is
// reported with a hint instead of surfacing later as a signing failure.
package aws
