package domain

// RestrictedZone is a circular geofence a tourist should not enter.
// Static configuration, read-only to the monitor.
type RestrictedZone struct {
	Name         string  `json:"name" yaml:"name"`
	CenterLat    float64 `json:"center_lat" yaml:"center_lat"`
	CenterLon    float64 `json:"center_lon" yaml:"center_lon"`
	RadiusMeters float64 `json:"radius_m" yaml:"radius_m"`
}
