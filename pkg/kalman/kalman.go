package kalman

import (
	"fmt"

	"github.com/Robogera/track/pkg/geom"
	"gonum.org/v1/gonum/mat"
)

// State is [cx, cy, s, r, vx, vy, vs], the measurement is [cx, cy, s, r].
// Aspect ratio has no velocity term.
const (
	dim_x = 7
	dim_z = 4
)

// Diagonal variances of the filter matrices.
// These are tuning knobs, not derived values.
type Noise struct {
	// P: initial state covariance
	InitialPositionVar float64 `toml:"initial_position_var"`
	InitialVelocityVar float64 `toml:"initial_velocity_var"`
	// R: measurement noise, shape covers both scale and aspect ratio
	MeasurementPositionVar float64 `toml:"measurement_position_var"`
	MeasurementShapeVar    float64 `toml:"measurement_shape_var"`
	// Q: process noise
	ProcessPositionVar      float64 `toml:"process_position_var"`
	ProcessVelocityVar      float64 `toml:"process_velocity_var"`
	ProcessScaleVelocityVar float64 `toml:"process_scale_velocity_var"`
}

func DefaultNoise() Noise {
	return Noise{
		InitialPositionVar:      10,
		InitialVelocityVar:      10000,
		MeasurementPositionVar:  1,
		MeasurementShapeVar:     10,
		ProcessPositionVar:      1,
		ProcessVelocityVar:      0.01,
		ProcessScaleVelocityVar: 0.0001,
	}
}

func (n Noise) Validate() error {
	for name, v := range map[string]float64{
		"initial_position_var":       n.InitialPositionVar,
		"initial_velocity_var":       n.InitialVelocityVar,
		"measurement_position_var":   n.MeasurementPositionVar,
		"measurement_shape_var":      n.MeasurementShapeVar,
		"process_position_var":       n.ProcessPositionVar,
		"process_velocity_var":       n.ProcessVelocityVar,
		"process_scale_velocity_var": n.ProcessScaleVelocityVar,
	} {
		if !(v > 0) {
			return fmt.Errorf("Invalid %s: %v, must be positive", name, v)
		}
	}
	return nil
}

// Constant velocity Kalman filter over a single bounding box
type BoxFilter struct {
	x          *mat.VecDense
	p          *mat.Dense
	f, h, q, r *mat.Dense
}

func diag(values ...float64) *mat.Dense {
	m := mat.NewDense(len(values), len(values), nil)
	for i, v := range values {
		m.Set(i, i, v)
	}
	return m
}

func NewBoxFilter(box geom.Box, noise Noise) *BoxFilter {
	f := diag(1, 1, 1, 1, 1, 1, 1)
	f.Set(0, 4, 1)
	f.Set(1, 5, 1)
	f.Set(2, 6, 1)

	h := mat.NewDense(dim_z, dim_x, nil)
	for i := range dim_z {
		h.Set(i, i, 1)
	}

	pos, vel := noise.InitialPositionVar, noise.InitialVelocityVar
	meas_pos, meas_shape := noise.MeasurementPositionVar, noise.MeasurementShapeVar
	proc_pos := noise.ProcessPositionVar

	z := geom.ToState(box)
	x := mat.NewVecDense(dim_x, nil)
	for i, v := range z {
		x.SetVec(i, v)
	}

	return &BoxFilter{
		x: x,
		p: diag(pos, pos, pos, pos, vel, vel, vel),
		f: f,
		h: h,
		q: diag(
			proc_pos, proc_pos, proc_pos, proc_pos,
			noise.ProcessVelocityVar,
			noise.ProcessVelocityVar,
			noise.ProcessScaleVelocityVar),
		r: diag(meas_pos, meas_pos, meas_shape, meas_shape),
	}
}

// Advances the state by one frame and returns the predicted box.
// A scale velocity that would collapse the box is zeroed first.
func (kf *BoxFilter) Predict() geom.Box {
	if kf.x.AtVec(2)+kf.x.AtVec(6) <= 0 {
		kf.x.SetVec(6, 0)
	}

	x := mat.NewVecDense(dim_x, nil)
	x.MulVec(kf.f, kf.x)
	kf.x = x

	var fp, p mat.Dense
	fp.Mul(kf.f, kf.p)
	p.Mul(&fp, kf.f.T())
	p.Add(&p, kf.q)
	kf.p = &p

	return kf.State()
}

// Corrects the state with an observed box. On failure the
// state is left untouched.
func (kf *BoxFilter) Update(box geom.Box) error {
	meas := geom.ToState(box)
	z := mat.NewVecDense(dim_z, meas[:])

	var hx, y mat.VecDense
	hx.MulVec(kf.h, kf.x)
	y.SubVec(z, &hx)

	var pht, s, s_inv mat.Dense
	pht.Mul(kf.p, kf.h.T())
	s.Mul(kf.h, &pht)
	s.Add(&s, kf.r)
	if err := s_inv.Inverse(&s); err != nil {
		return fmt.Errorf("Can't invert innovation covariance: %w", err)
	}

	var k mat.Dense
	k.Mul(&pht, &s_inv)

	var ky mat.VecDense
	ky.MulVec(&k, &y)
	kf.x.AddVec(kf.x, &ky)

	// Joseph form keeps P symmetric positive definite
	var kh mat.Dense
	kh.Mul(&k, kf.h)
	i_kh := diag(1, 1, 1, 1, 1, 1, 1)
	i_kh.Sub(i_kh, &kh)

	var a, p, kr, krk mat.Dense
	a.Mul(i_kh, kf.p)
	p.Mul(&a, i_kh.T())
	kr.Mul(&k, kf.r)
	krk.Mul(&kr, k.T())
	p.Add(&p, &krk)
	kf.p = &p

	return nil
}

// Box reconstructed from the current estimate
func (kf *BoxFilter) State() geom.Box {
	return geom.FromState(geom.State{
		kf.x.AtVec(0),
		kf.x.AtVec(1),
		kf.x.AtVec(2),
		kf.x.AtVec(3),
	})
}

// Center velocity in pixels per frame
func (kf *BoxFilter) Velocity() (float64, float64) {
	return kf.x.AtVec(4), kf.x.AtVec(5)
}

// Trace of the state covariance, a scalar measure of uncertainty
func (kf *BoxFilter) Uncertainty() float64 {
	return mat.Trace(kf.p)
}
