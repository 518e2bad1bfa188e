package rest

// Dispatcher is the request surface the resource managers depend on. The
// concrete Client implements it; tests may substitute their own.
type Dispatcher interface {
	// DoRequest issues a single request and returns the body and status.
	DoRequest(opts RequestOptions) ([]byte, int, error)

	// Get issues a GET and returns the decoded body.
	Get(endpoint string, params map[string]string) ([]byte, error)

	// Post issues a POST with a JSON body and returns the decoded body.
	Post(endpoint string, params map[string]string, data []byte) ([]byte, error)

	// Put issues a PUT with a JSON body. 204 replies return a nil body.
	Put(endpoint string, params map[string]string, data []byte) ([]byte, error)

	// Patch issues a PATCH with a JSON body.
	Patch(endpoint string, params map[string]string, data []byte) ([]byte, error)

	// Delete issues a DELETE.
	Delete(endpoint string, params map[string]string) error
}

// Compile-time check that the Client satisfies the Dispatcher interface.
var _ Dispatcher = &Client{}
