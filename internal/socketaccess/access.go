package socketaccess

// Sandbox controls whether the current process may open outbound sockets
type Sandbox interface {
	// Elevate grants socket permissions and returns a func restoring the previous state
	Elevate() (restore func())
}

// Unrestricted is a sandbox that never forbids anything
type Unrestricted struct{}

// Elevate implements Sandbox
func (Unrestricted) Elevate() func() {
	return func() {}
}

// Do runs op with socket permissions elevated and returns its result.
// Permissions are restored on every exit path, including a panic in op.
// Errors from op are returned unchanged.
func Do[T any](sb Sandbox, op func() (T, error)) (T, error) {
	restore := sb.Elevate()
	defer restore()
	return op()
}

// DoVoid is Do for operations without a result
func DoVoid(sb Sandbox, op func() error) error {
	restore := sb.Elevate()
	defer restore()
	return op()
}
