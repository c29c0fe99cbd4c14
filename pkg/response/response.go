package response

// Response is the standard API envelope returned by every endpoint
type Response struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// Success returns a success envelope wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Success:    true,
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns an error envelope wrapping the message
func Error(statusCode int, message string) Response {
	return Response{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
	}
}
