package models

// Affinity is the elemental attribute declared on a request.
type Affinity string

const (
	AffinityDarkness Affinity = "Oscuridad"
	AffinityLight    Affinity = "Luz"
	AffinityFire     Affinity = "Fuego"
	AffinityWater    Affinity = "Agua"
	AffinityWind     Affinity = "Viento"
	AffinityEarth    Affinity = "Tierra"
)

// Affinities lists every accepted affinity label.
var Affinities = []Affinity{
	AffinityDarkness,
	AffinityLight,
	AffinityFire,
	AffinityWater,
	AffinityWind,
	AffinityEarth,
}

// RequestStatus defines lifecycle states for requests.
type RequestStatus string

const (
	// RequestStatusPending indicates the request is awaiting review.
	RequestStatusPending RequestStatus = "Pendiente"
	// RequestStatusApproved indicates the request was accepted and holds a grimorio.
	RequestStatusApproved RequestStatus = "Aprobado"
	// RequestStatusRejected indicates the request was denied or failed validation at creation.
	RequestStatusRejected RequestStatus = "Rechazado"
)

// RequestStatuses lists every accepted status label.
var RequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
}

// ParseAffinity converts a raw label into an Affinity.
func ParseAffinity(raw string) (Affinity, bool) {
	for _, a := range Affinities {
		if string(a) == raw {
			return a, true
		}
	}
	return "", false
}

// ParseRequestStatus converts a raw label into a RequestStatus.
func ParseRequestStatus(raw string) (RequestStatus, bool) {
	for _, s := range RequestStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}
