package models

// Dataset is the unit of load and saveAll: the three entity collections.
type Dataset struct {
	Students []Student `json:"students"`
	Classes  []Class   `json:"classes"`
	Monitors []Monitor `json:"monitors"`
}

// Clone deep-copies the dataset.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Students: make([]Student, len(d.Students)),
		Classes:  make([]Class, len(d.Classes)),
		Monitors: make([]Monitor, len(d.Monitors)),
	}
	copy(out.Students, d.Students)
	copy(out.Monitors, d.Monitors)
	for i, c := range d.Classes {
		out.Classes[i] = c.Clone()
	}
	return out
}

// IsEmpty reports whether the dataset holds no entities.
func (d Dataset) IsEmpty() bool {
	return len(d.Students) == 0 && len(d.Classes) == 0 && len(d.Monitors) == 0
}
