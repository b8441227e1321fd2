package model

// Snapshot is the full set of fleet records at one instant.
type Snapshot struct {
	Ambulances []Ambulance `json:"ambulances"`
	Hospitals  []Hospital  `json:"hospitals"`
}

// Ambulance returns the ambulance with the given id if present in the snapshot.
func (s Snapshot) Ambulance(id string) (Ambulance, bool) {
	for _, a := range s.Ambulances {
		if a.ID == id {
			return a, true
		}
	}
	return Ambulance{}, false
}

// Hospital returns the hospital with the given id if present in the snapshot.
func (s Snapshot) Hospital(id string) (Hospital, bool) {
	for _, h := range s.Hospitals {
		if h.ID == id {
			return h, true
		}
	}
	return Hospital{}, false
}
