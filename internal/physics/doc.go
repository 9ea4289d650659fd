// Package physics provides the closed-form atmospheric, fluid and
// aerodynamic relations used to estimate airfoil lift:
//
//   - [SaturationVaporPressure]: Tetens' formula
//   - [TotalPressure]: hypsometric formula, valid below 11 km
//   - [AirDensity]: moist-air density from temperature, humidity and altitude
//   - [FlowVelocity]: pitot relation
//   - [LiftForce]: lift equation
//
// All inputs are plain scalars in SI units, temperature in °C. Functions
// with a restricted domain return a *[FormulaError] wrapping [ErrDomain],
// [ErrSingularity] or [ErrNonFinite] instead of NaN or Inf:
//
//	v, err := physics.FlowVelocity(dp, rho)
//	if errors.Is(err, physics.ErrDomain) {
//	    // negative dynamic pressure
//	}
package physics
