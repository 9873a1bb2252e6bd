package ml

// FeatureVector holds the five slider readings in the order the ensemble
// was trained on. The validate tags mirror the slider bounds; the classifier
// itself never checks them.
type FeatureVector struct {
	RMR int `json:"rmr" validate:"min=0,max=100"`
	RQD int `json:"rqd" validate:"min=0,max=100"`
	GSI int `json:"gsi" validate:"min=0,max=100"`
	UCS int `json:"ucs" validate:"min=0,max=200"`
	BTS int `json:"bts" validate:"min=0,max=50"`
}

// ParameterSpec describes one slider on the analysis page.
type ParameterSpec struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Default     int    `json:"default"`
}

var parameters = []ParameterSpec{
	{
		Key:         "rmr",
		Label:       "Rock Mass Rating (RMR)",
		Description: "Rock Mass Rating, an overall classification score for the rock mass.",
		Min:         0,
		Max:         100,
		Default:     50,
	},
	{
		Key:         "rqd",
		Label:       "Rock Quality Designation (RQD) %",
		Unit:        "%",
		Description: "Rock Quality Designation, the percentage of intact core pieces longer than 10 cm.",
		Min:         0,
		Max:         100,
		Default:     75,
	},
	{
		Key:         "gsi",
		Label:       "Geological Strength Index (GSI)",
		Description: "Geological Strength Index, describing the blockiness and joint condition of the rock mass.",
		Min:         0,
		Max:         100,
		Default:     65,
	},
	{
		Key:         "ucs",
		Label:       "Unconfined Compressive Strength (UCS) MPa",
		Unit:        "MPa",
		Description: "Unconfined Compressive Strength of the intact rock.",
		Min:         0,
		Max:         200,
		Default:     100,
	},
	{
		Key:         "bts",
		Label:       "Brazilian Tensile Strength (BTS) MPa",
		Unit:        "MPa",
		Description: "Brazilian Tensile Strength of the intact rock.",
		Min:         0,
		Max:         50,
		Default:     25,
	},
}

// FeatureNames returns the feature keys in vector order.
func FeatureNames() []string {
	names := make([]string, len(parameters))
	for i, p := range parameters {
		names[i] = p.Key
	}
	return names
}

// Parameters returns a copy of the slider table.
func Parameters() []ParameterSpec {
	return append([]ParameterSpec(nil), parameters...)
}

// DefaultFeatures returns the initial slider positions.
func DefaultFeatures() FeatureVector {
	return FeatureVector{
		RMR: parameters[0].Default,
		RQD: parameters[1].Default,
		GSI: parameters[2].Default,
		UCS: parameters[3].Default,
		BTS: parameters[4].Default,
	}
}

// Values returns the numeric vector [rmr, rqd, gsi, ucs, bts].
func (f FeatureVector) Values() []float64 {
	return []float64{
		float64(f.RMR),
		float64(f.RQD),
		float64(f.GSI),
		float64(f.UCS),
		float64(f.BTS),
	}
}

// Set assigns a feature by key. It reports false for unknown keys.
func (f *FeatureVector) Set(key string, value int) bool {
	switch key {
	case "rmr":
		f.RMR = value
	case "rqd":
		f.RQD = value
	case "gsi":
		f.GSI = value
	case "ucs":
		f.UCS = value
	case "bts":
		f.BTS = value
	default:
		return false
	}
	return true
}
