// Package fleet contains the domain model for the remote fleet-orchestration
// service (stacks, layers, instances, apps, deployments) and the name-based
// topology lookups built on top of it.
//
// All entities are read-only snapshots fetched fresh per lookup call; nothing
// is persisted locally. The API interface is the seam between the pure lookup
// logic and the OpsWorks-backed adapter in internal/shell/opsworks.
package fleet
