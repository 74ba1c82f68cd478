package ipvs

import (
	"context"
	"fmt"
)

// Protocol selects the transport family of a virtual service.
type Protocol int

const (
	TCP Protocol = iota
	UDP
)

// String returns the conventional upper-case protocol name.
func (p Protocol) String() string {
	switch p {
	case TCP:
		return "TCP"
	case UDP:
		return "UDP"
	default:
		return "UNKNOWN"
	}
}

// Flag returns the ipvsadm protocol flag for service and destination
// commands.
func (p Protocol) Flag() string {
	if p == UDP {
		return "-u"
	}
	return "-t"
}

// Scheduling algorithm names understood by ipvsadm.
const (
	RoundRobin              = "rr"
	WeightedRoundRobin      = "wrr"
	LeastConnection         = "lc"
	WeightedLeastConnection = "wlc"
	SourceHashing           = "sh"
	DestinationHashing      = "dh"
)

// Schedulers lists the accepted scheduling policy names.
func Schedulers() []string {
	return []string{
		RoundRobin,
		WeightedRoundRobin,
		LeastConnection,
		WeightedLeastConnection,
		SourceHashing,
		DestinationHashing,
	}
}

// ServiceKey identifies a virtual service endpoint on the load balancer.
type ServiceKey struct {
	Protocol Protocol
	Port     int
}

// String formats the key as "TCP:80".
func (k ServiceKey) String() string {
	return fmt.Sprintf("%s:%d", k.Protocol, k.Port)
}

// ControlPlane is the set of mutations the monitor issues against the
// load balancer. Implementations must be idempotent by contract.
type ControlPlane interface {
	CreateService(ctx context.Context, proto Protocol, virtualAddr string, port int, scheduler string) error
	AddDestination(ctx context.Context, proto Protocol, virtualAddr string, port int, backendAddr string, backendPort int) error
	RemoveDestination(ctx context.Context, proto Protocol, virtualAddr string, port int, backendAddr string, backendPort int) error
}
