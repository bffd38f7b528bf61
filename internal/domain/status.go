package domain

// AnimalStatus is the availability tag of an animal.
type AnimalStatus string

const (
	// AnimalAvailable permits new adoption requests.
	AnimalAvailable AnimalStatus = "available"
	// AnimalAdopted is set by request approval or by an administrator.
	AnimalAdopted AnimalStatus = "adopted"
	// AnimalRemoved covers every other exit (death, transfer, ...); the
	// detail lives in Animal.StatusReason.
	AnimalRemoved AnimalStatus = "removed"
)

// Valid reports whether s is one of the known animal statuses.
func (s AnimalStatus) Valid() bool {
	switch s {
	case AnimalAvailable, AnimalAdopted, AnimalRemoved:
		return true
	}
	return false
}

// RequestStatus is the lifecycle state of an adoption request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// Terminal reports whether no further transition is permitted from s.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestApproved, RequestRejected, RequestCancelled:
		return true
	}
	return false
}

// Role distinguishes administrators from clients.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// ParseRole accepts exactly the two literal role names.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleClient:
		return RoleClient, true
	}
	return "", false
}
