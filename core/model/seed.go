package model

// SeedAmbulances returns the default fleet used when no seed file is configured.
func SeedAmbulances() []Ambulance {
	return []Ambulance{
		{ID: "AMB-001", Position: Position{Lat: 40.7128, Lng: -74.006}, Status: StatusAvailable, Zone: "Zone A", ResponseTimeMinutes: 4.2, Driver: "John Smith", VehicleType: "Type A"},
		{ID: "AMB-002", Position: Position{Lat: 40.758, Lng: -73.9855}, Status: StatusOnCall, Zone: "Zone B", ResponseTimeMinutes: 5.8, Driver: "Sarah Johnson", VehicleType: "Type B"},
		{ID: "AMB-003", Position: Position{Lat: 40.7489, Lng: -73.968}, Status: StatusAvailable, Zone: "Zone C", ResponseTimeMinutes: 3.5, Driver: "Mike Davis", VehicleType: "Type A"},
		{ID: "AMB-004", Position: Position{Lat: 40.7614, Lng: -73.9776}, Status: StatusOnCall, Zone: "Zone D", ResponseTimeMinutes: 6.2, Driver: "Emma Wilson", VehicleType: "Type C"},
		{ID: "AMB-005", Position: Position{Lat: 40.7505, Lng: -73.9934}, Status: StatusAvailable, Zone: "Zone E", ResponseTimeMinutes: 4.9, Driver: "Alex Brown", VehicleType: "Type B"},
	}
}

// SeedHospitals returns the default hospital reference data.
func SeedHospitals() []Hospital {
	return []Hospital{
		{ID: "HOSP-001", Name: "Central Medical", Position: Position{Lat: 40.7505, Lng: -73.9934}, BedCapacity: 45, EmergencyCapable: true},
		{ID: "HOSP-002", Name: "Emergency Care", Position: Position{Lat: 40.7614, Lng: -73.9776}, BedCapacity: 32, EmergencyCapable: true},
		{ID: "HOSP-003", Name: "Trauma Center", Position: Position{Lat: 40.7128, Lng: -74.006}, BedCapacity: 28, EmergencyCapable: true},
	}
}
