package physics

// Particle masses in GeV/c².
const (
	MassPion    = 0.13957
	MassProton  = 0.938272
	MassNeutron = 0.939565
	MassHelium3 = 2.8083916
)
