// Package ipvs is the load-balancer control-plane collaborator. It models
// IPVS virtual services and destinations and mutates the kernel table by
// shelling out to ipvsadm. The monitor treats these operations as opaque:
// they either succeed or are a no-op when the table is already in the
// desired state.
package ipvs
