package physics

// LiftForce returns lift in N: L = 0.5 * Cl * rho * v² * A.
func LiftForce(cl, rho, velocity, area float64) float64 {
	return 0.5 * cl * rho * velocity * velocity * area
}

// DynamicPressure returns q = 0.5 * rho * v² in Pa.
func DynamicPressure(rho, velocity float64) float64 {
	return 0.5 * rho * velocity * velocity
}
