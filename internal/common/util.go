package common

// WipeBytes overwrites the slice contents with zeros. Used for passwords
// read from the terminal once they are no longer needed.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
