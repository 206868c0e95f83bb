package math

// Mat3 is a 3x3 matrix in row-major order, the layout model files use.
// It multiplies column vectors: v' = M * v.
type Mat3 [9]float32

// Identity3 returns a 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// At returns the element in row r, column c.
func (m Mat3) At(r, c int) float32 { return m[r*3+c] }

// Mul returns m * other.
func (m Mat3) Mul(other Mat3) Mat3 {
	var out Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = m[r*3]*other[c] + m[r*3+1]*other[3+c] + m[r*3+2]*other[6+c]
		}
	}
	return out
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Mat4 widens the matrix to a column-major 4x4 rotation.
func (m Mat3) Mat4() Mat4 {
	return Mat4{
		m[0], m[3], m[6], 0,
		m[1], m[4], m[7], 0,
		m[2], m[5], m[8], 0,
		0, 0, 0, 1,
	}
}
