package httpclient

// HTTPClientInterface is the surface trustctl commands program against.
// Implementations handle authentication, request building, and response
// processing for the trust service's REST API.
type HTTPClientInterface interface {
	// DoRequest makes an HTTP request with the given options.
	// Returns the response body, Location header (if present), and any error that occurred.
	DoRequest(opts RequestOptions) ([]byte, string, error)

	// CreateResource creates a new resource using the given JSON data.
	// resourceType specifies the API endpoint, data contains the resource JSON,
	// and queryParams are optional query parameters.
	// Returns the response body, Location header, and any error that occurred.
	CreateResource(resourceType string, data []byte, queryParams map[string]string) ([]byte, string, error)

	// GetResource retrieves a resource using the given resource id.
	// resourceType specifies the API endpoint, resourceName identifies the resource,
	// and queryParams are optional query parameters.
	// Returns the response body and any error that occurred.
	GetResource(resourceType string, resourceName string, queryParams map[string]string, objectType string) ([]byte, error)

	// ListResources lists resources of a specific type.
	// resourceType specifies the API endpoint, and queryParams are optional query parameters.
	// Returns the response body and any error that occurred.
	ListResources(resourceType string, queryParams map[string]string) ([]byte, error)
}

var _ HTTPClientInterface = &HTTPClient{}
